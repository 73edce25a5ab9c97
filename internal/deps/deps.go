package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary subreel invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of resolving one Requirement. Path is the resolved
// executable when Available is true; Detail explains why it is not.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// CheckBinaries resolves every requirement against PATH (or as given, when the
// command contains a separator) and reports the result in input order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = resolve(req)
	}
	return results
}

func resolve(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// Missing returns the required statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			out = append(out, status)
		}
	}
	return out
}

// Describe renders statuses as "name (detail)" joined by commas.
func Describe(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if status.Detail == "" {
			parts = append(parts, status.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	return strings.Join(parts, ", ")
}
