package services

import (
	"errors"
	"strings"
)

// ErrExternalTool is the fallback marker for failures without a more specific
// classification.
var ErrExternalTool = errors.New("external tool error")

// Error tags a failure with where it happened. Marker is the caller's
// classification sentinel; errors.Is matches both Marker and Err.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Subject   string
	Err       error
}

func (e *Error) Error() string {
	marker := e.Marker
	if marker == nil {
		marker = ErrExternalTool
	}
	parts := []string{marker.Error()}
	for _, part := range []string{e.Stage, e.Operation, e.Subject} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "service failure")
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Marker != nil {
		out = append(out, e.Marker)
	} else {
		out = append(out, ErrExternalTool)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap tags err with marker and the stage/operation it happened in. subject
// names what was being worked on, usually a path.
func Wrap(marker error, stage, operation, subject string, err error) error {
	return &Error{
		Marker:    marker,
		Stage:     stage,
		Operation: operation,
		Subject:   subject,
		Err:       err,
	}
}

// StageOf returns the stage recorded by the outermost *Error in err's chain.
func StageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Stage
	}
	return ""
}
