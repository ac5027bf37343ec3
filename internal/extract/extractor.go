// Package extract produces single-page PDF artifacts by invoking the rendering
// backend once per page, optionally cropping to fixed media.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
	"git.home.luguber.info/inful/pagecrop/internal/procexec"
)

// DefaultTimeout bounds a single page extraction.
const DefaultTimeout = 60 * time.Second

// Options configures an Extractor.
type Options struct {
	Source     string
	Resolution int           // -r<dpi>; 0 keeps the device default
	Timeout    time.Duration // 0 = DefaultTimeout
	// BackendPage maps a user-facing page number to the 1-based page the
	// backend expects. nil means the numbers already match.
	BackendPage func(int) int
}

// Extractor renders one page of Source per call.
type Extractor struct {
	locator backend.Locator
	runner  procexec.Runner
	opts    Options
}

// New creates an Extractor.
func New(locator backend.Locator, runner procexec.Runner, opts Options) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BackendPage == nil {
		opts.BackendPage = func(p int) int { return p }
	}
	return &Extractor{locator: locator, runner: runner, opts: opts}
}

// Args builds the backend arguments for one page. geom nil extracts at full size.
func (e *Extractor) Args(page int, artifact string, geom *geometry.Geometry) []string {
	n := strconv.Itoa(e.opts.BackendPage(page))
	args := backend.BaseArgs()
	if e.opts.Resolution > 0 {
		args = append(args, "-r"+strconv.Itoa(e.opts.Resolution))
	}
	args = append(args,
		"-dFirstPage="+n,
		"-dLastPage="+n,
		backend.OutputFileArg(artifact),
	)
	if geom == nil {
		return append(args, e.opts.Source)
	}
	return append(args,
		"-dFIXEDMEDIA",
		"-dDEVICEWIDTHPOINTS="+strconv.Itoa(geom.Width),
		"-dDEVICEHEIGHTPOINTS="+strconv.Itoa(geom.Height),
		"-c", geom.PageOffset(),
		"-f", e.opts.Source,
	)
}

// Extract writes page to artifact. A non-zero exit, a timeout or a missing
// artifact after exit 0 are retryable extraction failures; a missing backend
// or a canceled context are not.
func (e *Extractor) Extract(ctx context.Context, page int, artifact string, geom *geometry.Geometry) error {
	bin, err := e.locator.Locate()
	if err != nil {
		return err
	}
	// A previous failed attempt may have left a partial file behind.
	if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		return perrors.WorkspaceError("remove stale artifact", err).WithContext("page", page)
	}

	res, err := e.runner.Run(ctx, procexec.Command{
		Name:    bin,
		Args:    e.Args(page, artifact, geom),
		Timeout: e.opts.Timeout,
	})
	if err != nil {
		if ctx.Err() != nil {
			return perrors.Canceled(ctx.Err())
		}
		return perrors.ExtractionAttemptFailed(page, fmt.Errorf("%w: %w", perrors.ErrExtractionFailed, err))
	}
	if _, statErr := os.Stat(artifact); statErr != nil {
		return perrors.ExtractionAttemptFailed(page, fmt.Errorf("%w: backend exited 0 but produced no artifact: %w", perrors.ErrExtractionFailed, statErr))
	}
	slog.Debug("Extracted page",
		logfields.Stage("extract"),
		logfields.Page(page),
		logfields.Path(artifact),
		slog.Bool("cropped", geom != nil),
		logfields.Duration(res.Duration))
	return nil
}
