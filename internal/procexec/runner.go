// Package procexec runs external backend commands with a hard timeout and
// optional tracing of their command lines and output.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
)

// Command describes a single subprocess invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures what a finished command produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner abstracts subprocess execution so extraction and merge can be tested
// without a rendering backend installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	trace  bool
	logger *slog.Logger
}

// NewExecRunner returns a runner. With trace enabled every command line and its
// output is logged at debug level; otherwise output is only surfaced on failure.
func NewExecRunner(trace bool, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{trace: trace, logger: logger}
}

// Run executes cmd. A non-zero exit returns an *ExitError; exceeding
// cmd.Timeout returns an error wrapping errors.ErrTimeout.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the binary comes from the backend locator, args are built internally
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.WaitDelay = 5 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.trace {
		r.logger.Debug("Running backend command", slog.String("command", c.String()))
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if r.trace {
		if res.Stdout != "" {
			r.logger.Debug("backend stdout", slog.String("output", res.Stdout))
		}
		if res.Stderr != "" {
			r.logger.Debug("backend stderr", slog.String("error_output", res.Stderr))
		}
	}

	if err == nil {
		return res, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return res, fmt.Errorf("%w after %s: %s", perrors.ErrTimeout, c.Timeout, c.Name)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.logger.Debug("Backend command failed",
			slog.String("command", c.String()),
			logfields.ExitCode(res.ExitCode),
			slog.String("stderr", tail(res.Stderr, 2048)))
		return res, &ExitError{Code: res.ExitCode, Stderr: tail(res.Stderr, 2048)}
	}
	return res, fmt.Errorf("start %s: %w", c.Name, err)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("exit status %d: %s", e.Code, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
