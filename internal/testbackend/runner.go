// Package testbackend provides an in-memory stand-in for the Ghostscript
// backend so extraction, merge and pipeline behavior can be tested without
// spawning processes.
package testbackend

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/pagecrop/internal/procexec"
)

// Binary is the path reported by the fake locator.
const Binary = "/fake/bin/gs"

// Behavior decides the outcome of one invocation. Returning nil makes the
// runner write the output file and succeed.
type Behavior func(call Call) error

// Call is a recorded invocation with its parsed Ghostscript parameters.
type Call struct {
	Seq     int
	Command procexec.Command
}

// Output returns the -sOutputFile value with '%%' unescaped.
func (c Call) Output() string {
	v := c.Param("-sOutputFile=")
	return strings.ReplaceAll(v, "%%", "%")
}

// Param returns the value of the first argument starting with prefix.
func (c Call) Param(prefix string) string {
	for _, a := range c.Command.Args {
		if strings.HasPrefix(a, prefix) {
			return strings.TrimPrefix(a, prefix)
		}
	}
	return ""
}

// Has reports whether arg is present verbatim.
func (c Call) Has(arg string) bool {
	for _, a := range c.Command.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// FirstPage returns -dFirstPage as an int, or 0 for merge invocations.
func (c Call) FirstPage() int {
	n, _ := strconv.Atoi(c.Param("-dFirstPage="))
	return n
}

// IsMerge reports whether the call is a composition (no page selection).
func (c Call) IsMerge() bool {
	return c.Param("-dFirstPage=") == ""
}

// Inputs returns the trailing positional input files of a merge call.
func (c Call) Inputs() []string {
	var out []string
	for _, a := range c.Command.Args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

// Runner is a concurrency-safe fake procexec.Runner.
type Runner struct {
	mu       sync.Mutex
	calls    []Call
	behavior Behavior
	Delay    func(call Call) time.Duration
}

// NewRunner returns a runner using behavior; nil always succeeds.
func NewRunner(behavior Behavior) *Runner {
	return &Runner{behavior: behavior}
}

// Run records the call, applies the behavior and writes the output on success.
func (r *Runner) Run(ctx context.Context, cmd procexec.Command) (procexec.Result, error) {
	r.mu.Lock()
	call := Call{Seq: len(r.calls) + 1, Command: cmd}
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if r.Delay != nil {
		select {
		case <-time.After(r.Delay(call)):
		case <-ctx.Done():
			return procexec.Result{ExitCode: -1}, ctx.Err()
		}
	}
	if r.behavior != nil {
		if err := r.behavior(call); err != nil {
			return procexec.Result{ExitCode: 1}, err
		}
	}
	out := call.Output()
	if out == "" {
		return procexec.Result{ExitCode: 1}, fmt.Errorf("no -sOutputFile in %v", cmd.Args)
	}
	content := fmt.Sprintf("%%PDF-fake %s\n", strings.Join(cmd.Args, " "))
	if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
		return procexec.Result{ExitCode: 1}, err
	}
	return procexec.Result{}, nil
}

// Calls returns a snapshot of every recorded call in invocation order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// PageCalls returns the extraction calls for a backend page number.
func (r *Runner) PageCalls(page int) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if !c.IsMerge() && c.FirstPage() == page {
			out = append(out, c)
		}
	}
	return out
}

// MergeCalls returns every composition call.
func (r *Runner) MergeCalls() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.IsMerge() {
			out = append(out, c)
		}
	}
	return out
}

// ExitError mimics a backend exiting with code.
func ExitError(code int) error {
	return &procexec.ExitError{Code: code, Stderr: "simulated failure"}
}

// FailPage fails every extraction of page with exit code 1.
func FailPage(page int) Behavior {
	return func(c Call) error {
		if !c.IsMerge() && c.FirstPage() == page {
			return ExitError(1)
		}
		return nil
	}
}

// FailPageTimes fails the first k extractions of page, then succeeds.
func FailPageTimes(page, k int) Behavior {
	var mu sync.Mutex
	seen := 0
	return func(c Call) error {
		if c.IsMerge() || c.FirstPage() != page {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		seen++
		if seen <= k {
			return ExitError(1)
		}
		return nil
	}
}

// FailMerge fails every composition call.
func FailMerge() Behavior {
	return func(c Call) error {
		if c.IsMerge() {
			return ExitError(1)
		}
		return nil
	}
}
