package progress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter renders progress for one bounded unit of work. Implementations are
// purely observational; callers never branch on them.
type Reporter interface {
	Start(total int)
	Increment()
	Stop()
}

// Factory returns a fresh reporter labelled with description.
type Factory func(description string) Reporter

// Nop returns a reporter that discards all updates.
func Nop() Reporter { return nopReporter{} }

// NopFactory returns a factory producing no-op reporters.
func NopFactory() Factory {
	return func(string) Reporter { return nopReporter{} }
}

// NewFactory renders progress bars to w when it is a terminal and silently
// discards progress otherwise.
func NewFactory(w io.Writer) Factory {
	if !IsTerminal(w) {
		return NopFactory()
	}
	return BarFactory(w)
}

// BarFactory always renders progress bars to w.
func BarFactory(w io.Writer) Factory {
	return func(description string) Reporter {
		return &barReporter{out: w, description: description}
	}
}

// IsTerminal reports whether w is attached to an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type nopReporter struct{}

func (nopReporter) Start(int)  {}
func (nopReporter) Increment() {}
func (nopReporter) Stop()      {}

type barReporter struct {
	out         io.Writer
	description string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (r *barReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Close()
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(r.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(r.out, "\n") }),
	)
}

func (r *barReporter) Increment() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	_ = r.bar.Add(1)
}

func (r *barReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	if !r.bar.IsFinished() {
		_ = r.bar.Exit()
		_, _ = io.WriteString(r.out, "\n")
	}
	r.bar = nil
}
