package mkvtoolnix

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"subreel/internal/services"
)

// mkvtoolnix exit statuses.
const (
	ExitOK       = 0
	ExitWarnings = 1
	ExitError    = 2
)

// CommandError reports an invocation whose exit status signalled failure.
type CommandError struct {
	// Stage is the pipeline step the invocation belonged to, when known.
	Stage    string
	Binary   string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if detail := firstLine(e.Stderr); detail != "" {
		return msg + ": " + detail
	}
	if detail := firstErrorLine(e.Stdout); detail != "" {
		return msg + ": " + detail
	}
	return msg
}

// Diagnostic returns the raw tool output worth showing an operator. mkvtoolnix
// prints most errors on stdout, so stdout is used when stderr is empty.
func (e *CommandError) Diagnostic() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Stdout)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBinaries overrides the mkvmerge and mkvextract executables.
func WithBinaries(mkvmerge, mkvextract string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(mkvmerge); s != "" {
			c.mkvmerge = s
		}
		if s := strings.TrimSpace(mkvextract); s != "" {
			c.mkvextract = s
		}
	}
}

// WithStrictWarnings treats exit status 1 as failure.
func WithStrictWarnings(strict bool) Option {
	return func(c *Client) {
		c.strictWarnings = strict
	}
}

// WithTimeout bounds every invocation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps the mkvmerge/mkvextract CLI interactions.
type Client struct {
	mkvmerge       string
	mkvextract     string
	strictWarnings bool
	timeout        time.Duration
	exec           Executor
}

// New constructs a client using the default binaries on PATH.
func New(opts ...Option) *Client {
	client := &Client{
		mkvmerge:   "mkvmerge",
		mkvextract: "mkvextract",
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Binaries returns the configured mkvmerge and mkvextract executables.
func (c *Client) Binaries() (mkvmerge, mkvextract string) {
	return c.mkvmerge, c.mkvextract
}

// Identify runs `mkvmerge <input> -i` and returns the track inventory.
func (c *Client) Identify(ctx context.Context, input string) (Result, error) {
	if strings.TrimSpace(input) == "" {
		return Result{}, errors.New("identify: input path required")
	}
	return c.run(ctx, Command{Binary: c.mkvmerge, Args: []string{input, "-i"}})
}

// ExtractTrack runs `mkvextract <input> tracks <trackID>:<output>` inside dir.
// mkvextract resolves output relative to dir.
func (c *Client) ExtractTrack(ctx context.Context, dir, input string, trackID int, output string) (Result, error) {
	if strings.TrimSpace(input) == "" {
		return Result{}, errors.New("extract: input path required")
	}
	if trackID < 0 {
		return Result{}, fmt.Errorf("extract: invalid track id %d", trackID)
	}
	if strings.TrimSpace(output) == "" {
		return Result{}, errors.New("extract: output name required")
	}
	selector := strconv.Itoa(trackID) + ":" + output
	return c.run(ctx, Command{Binary: c.mkvextract, Args: []string{input, "tracks", selector}, Dir: dir})
}

func (c *Client) run(ctx context.Context, cmd Command) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	result, err := c.exec.Run(ctx, cmd)
	if err != nil {
		return result, err
	}
	if !c.succeeded(result.ExitCode) {
		stage, _ := services.StageFromContext(ctx)
		return result, &CommandError{
			Stage:    stage,
			Binary:   cmd.Binary,
			Args:     append([]string(nil), cmd.Args...),
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

func (c *Client) succeeded(code int) bool {
	switch code {
	case ExitOK:
		return true
	case ExitWarnings:
		return !c.strictWarnings
	default:
		return false
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func firstErrorLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error:") {
			return line
		}
	}
	return ""
}
