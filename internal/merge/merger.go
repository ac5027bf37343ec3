// Package merge composes per-page artifacts into the destination document
// with a single backend invocation.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
	"git.home.luguber.info/inful/pagecrop/internal/pdfinfo"
	"git.home.luguber.info/inful/pagecrop/internal/procexec"
)

// DefaultTimeout bounds the composition call.
const DefaultTimeout = 600 * time.Second

// Options configures a Merger.
type Options struct {
	Timeout time.Duration // 0 = DefaultTimeout
	// Verifier, when set, checks that the composed document has one page per
	// artifact before it replaces the destination.
	Verifier pdfinfo.Prober
}

// Merger composes artifacts into one document. It is never retried.
type Merger struct {
	locator backend.Locator
	runner  procexec.Runner
	opts    Options
	newID   func() string
}

// New creates a Merger.
func New(locator backend.Locator, runner procexec.Runner, opts Options) *Merger {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Merger{
		locator: locator,
		runner:  runner,
		opts:    opts,
		newID:   func() string { return uuid.NewString()[:8] },
	}
}

// Args builds the composition arguments; inputs keep their order.
func (m *Merger) Args(inputs []string, output string) []string {
	args := backend.BaseArgs()
	args = append(args, backend.OutputFileArg(output))
	return append(args, inputs...)
}

// TempPath returns the staging file used for dest.
func (m *Merger) TempPath(dest string) string {
	return fmt.Sprintf("%s.%s.tmp", dest, m.newID())
}

// Merge composes the artifacts of r in ascending page order into dest.
// Every artifact must exist. dest is only created or replaced when the
// composition (and the optional verification) succeeded.
func (m *Merger) Merge(ctx context.Context, r geometry.PageRange, artifactFor func(page int) string, dest string) error {
	inputs := make([]string, 0, r.Len())
	for _, page := range r.Pages() {
		path := artifactFor(page)
		if _, err := os.Stat(path); err != nil {
			return perrors.MergeFailed(dest, fmt.Errorf("%w: artifact for page %d: %w", perrors.ErrMergeFailed, page, err)).
				WithContext("page", page)
		}
		inputs = append(inputs, path)
	}

	bin, err := m.locator.Locate()
	if err != nil {
		return err
	}

	tmp := m.TempPath(dest)
	start := time.Now()
	_, err = m.runner.Run(ctx, procexec.Command{
		Name:    bin,
		Args:    m.Args(inputs, tmp),
		Timeout: m.opts.Timeout,
	})
	if err != nil {
		removeQuietly(tmp)
		if ctx.Err() != nil {
			return perrors.Canceled(ctx.Err())
		}
		return perrors.MergeFailed(dest, fmt.Errorf("%w: %w", perrors.ErrMergeFailed, err))
	}

	if m.opts.Verifier != nil {
		if err := m.verify(tmp, r.Len()); err != nil {
			removeQuietly(tmp)
			return perrors.MergeFailed(dest, err)
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		removeQuietly(tmp)
		return perrors.WorkspaceError("rename destination", err).WithContext("destination", dest)
	}
	slog.Info("Merged pages",
		logfields.Stage("merge"),
		logfields.Path(dest),
		logfields.Pages(len(inputs)),
		logfields.Duration(time.Since(start)))
	return nil
}

func (m *Merger) verify(path string, want int) error {
	got, err := m.opts.Verifier.PageCount(path)
	if err != nil {
		return fmt.Errorf("%w: verify output: %w", perrors.ErrMergeFailed, err)
	}
	if got != want {
		return fmt.Errorf("%w: output has %d pages, expected %d", perrors.ErrMergeFailed, got, want)
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove temporary output", logfields.Path(path), logfields.Error(err))
	}
}
