package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	"git.home.luguber.info/inful/pagecrop/internal/config"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/metrics"
	"git.home.luguber.info/inful/pagecrop/internal/pdfinfo"
	"git.home.luguber.info/inful/pagecrop/internal/progress"
	"git.home.luguber.info/inful/pagecrop/internal/testbackend"
)

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes []metrics.OutcomeLabel
	workers  int
}

func (r *outcomeRecorder) IncRunOutcome(o metrics.OutcomeLabel) { r.outcomes = append(r.outcomes, o) }
func (r *outcomeRecorder) SetWorkers(n int)                     { r.workers = n }

func intPtr(v int) *int { return &v }

func testConfig(t *testing.T, first, last int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o600))
	cfg := config.Default()
	cfg.Job.Source = src
	cfg.Job.Destination = filepath.Join(dir, "out.pdf")
	cfg.Job.FirstPage = intPtr(first)
	cfg.Job.LastPage = intPtr(last)
	cfg.Workspace.BaseDir = filepath.Join(dir, "work")
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, runner *testbackend.Runner, opts ...Option) *Orchestrator {
	t.Helper()
	all := append([]Option{
		WithRunner(runner),
		WithLocator(backend.Static(testbackend.Binary)),
		WithLogger(quietLogger()),
		WithProber(pdfinfo.Static(10)),
	}, opts...)
	o, err := New(cfg, all...)
	require.NoError(t, err)
	return o
}

func TestRunCropScenario(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	cfg.Job.NoCrop = "2"
	cfg.Workers = 8
	cfg.Job.Crop = &config.CropConfig{Form: geometry.RectFormCorners, Left: 100, Top: 50, Right: 400, Bottom: 600}
	runner := testbackend.NewRunner(nil)
	var out bytes.Buffer
	rec := &outcomeRecorder{}

	o := newTestOrchestrator(t, cfg, runner,
		WithReporter(progress.NewLineReporter(&out, "en")),
		WithRecorder(rec))
	require.NoError(t, o.Run(context.Background()))

	for _, page := range []int{1, 3} {
		calls := runner.PageCalls(page)
		require.Len(t, calls, 1)
		c := calls[0]
		assert.True(t, c.Has("-dFIXEDMEDIA"))
		assert.Equal(t, "300", c.Param("-dDEVICEWIDTHPOINTS="))
		assert.Equal(t, "550", c.Param("-dDEVICEHEIGHTPOINTS="))
		assert.True(t, c.Has("<</PageOffset [-100 50]>> setpagedevice"))
		assert.Equal(t, o.Workspace().ArtifactPath(page), c.Output())
	}

	page2 := runner.PageCalls(2)
	require.Len(t, page2, 1)
	assert.False(t, page2[0].Has("-dFIXEDMEDIA"))
	assert.Empty(t, page2[0].Param("-dDEVICEWIDTHPOINTS="))
	assert.Equal(t, cfg.Job.Source, page2[0].Command.Args[len(page2[0].Command.Args)-1])

	merges := runner.MergeCalls()
	require.Len(t, merges, 1)
	ws := o.Workspace()
	assert.Equal(t, []string{ws.ArtifactPath(1), ws.ArtifactPath(2), ws.ArtifactPath(3)}, merges[0].Inputs())
	for _, c := range runner.Calls()[:3] {
		assert.Less(t, c.Seq, merges[0].Seq, "merge must follow every extraction")
	}

	assert.FileExists(t, cfg.Job.Destination)
	assert.Empty(t, ws.Missing(o.Pages()))
	entries, err := os.ReadDir(ws.GetPath())
	require.NoError(t, err)
	assert.Len(t, entries, 3, "exactly one artifact per page")
	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte(" page ")))
	assert.Contains(t, out.String(), "3/3 (100.0%)")
	assert.Contains(t, out.String(), "Merging...\n")
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 3, rec.workers)
}

func TestRunPageAlwaysFails(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	cfg.Workers = 1
	runner := testbackend.NewRunner(testbackend.FailPage(2))
	rec := &outcomeRecorder{}

	o := newTestOrchestrator(t, cfg, runner, WithRecorder(rec))
	err := o.Run(context.Background())
	require.Error(t, err)

	pe, ok := perrors.As(err)
	require.True(t, ok)
	assert.Equal(t, perrors.CategoryExtraction, pe.Category)
	assert.Equal(t, 2, pe.Context["page"])
	assert.Contains(t, err.Error(), "page extraction failed after retries")

	assert.Len(t, runner.PageCalls(2), 5)
	assert.Empty(t, runner.MergeCalls())
	assert.NoFileExists(t, cfg.Job.Destination)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSplitFailed}, rec.outcomes)
}

func TestRunRecoversFromTransientFailures(t *testing.T) {
	cfg := testConfig(t, 1, 4)
	runner := testbackend.NewRunner(testbackend.FailPageTimes(3, 4))

	o := newTestOrchestrator(t, cfg, runner)
	require.NoError(t, o.Run(context.Background()))
	assert.Len(t, runner.PageCalls(3), 5)
	assert.FileExists(t, cfg.Job.Destination)
}

func TestRunMergeFailure(t *testing.T) {
	cfg := testConfig(t, 1, 2)
	runner := testbackend.NewRunner(testbackend.FailMerge())
	rec := &outcomeRecorder{}

	o := newTestOrchestrator(t, cfg, runner, WithRecorder(rec))
	err := o.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrMergeFailed)
	assert.Len(t, runner.MergeCalls(), 1)
	assert.NoFileExists(t, cfg.Job.Destination)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeMergeFailed}, rec.outcomes)
}

func TestZeroBasedNumbering(t *testing.T) {
	cfg := testConfig(t, 0, 1)
	cfg.Job.Numbering = config.NumberingZeroBased
	runner := testbackend.NewRunner(nil)

	o := newTestOrchestrator(t, cfg, runner)
	require.NoError(t, o.Run(context.Background()))
	assert.Len(t, runner.PageCalls(1), 1, "user page 0 is backend page 1")
	assert.Len(t, runner.PageCalls(2), 1)
	assert.FileExists(t, o.Workspace().ArtifactPath(0))
}

func TestLastPageFromProbe(t *testing.T) {
	cfg := testConfig(t, 1, 1)
	cfg.Job.FirstPage = nil
	cfg.Job.LastPage = nil
	runner := testbackend.NewRunner(nil)

	o := newTestOrchestrator(t, cfg, runner, WithProber(pdfinfo.Static(4)))
	assert.Equal(t, geometry.PageRange{First: 1, Last: 4}, o.Pages())
}

func TestNoCropRangeBeyondDocumentIsClipped(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	cfg.Job.NoCrop = "2-2000000000"
	cfg.Job.Crop = &config.CropConfig{Form: geometry.RectFormExtent, Width: 200, Height: 100}
	runner := testbackend.NewRunner(nil)

	start := time.Now()
	o := newTestOrchestrator(t, cfg, runner)
	require.NoError(t, o.Run(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.True(t, runner.PageCalls(1)[0].Has("-dFIXEDMEDIA"))
	assert.False(t, runner.PageCalls(2)[0].Has("-dFIXEDMEDIA"))
	assert.False(t, runner.PageCalls(3)[0].Has("-dFIXEDMEDIA"))
}

func TestNewRejectsInvalidCrop(t *testing.T) {
	cfg := testConfig(t, 1, 2)
	cfg.Job.Crop = &config.CropConfig{Form: geometry.RectFormCorners, Left: 400, Top: 50, Right: 100, Bottom: 600}

	_, err := New(cfg, WithRunner(testbackend.NewRunner(nil)), WithLocator(backend.Static(testbackend.Binary)), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryValidation))
}

func TestNewMissingBackend(t *testing.T) {
	cfg := testConfig(t, 1, 2)
	cfg.Ghostscript.Binary = filepath.Join(t.TempDir(), "no-such-gs")

	_, err := New(cfg, WithRunner(testbackend.NewRunner(nil)), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrBinaryNotFound)
}

func TestExtractSingle(t *testing.T) {
	cfg := testConfig(t, 1, 5)
	cfg.Job.Crop = &config.CropConfig{Form: geometry.RectFormExtent, Left: 10, Top: 20, Width: 200, Height: 100}
	runner := testbackend.NewRunner(nil)
	o := newTestOrchestrator(t, cfg, runner)

	out := filepath.Join(t.TempDir(), "page4.pdf")
	require.NoError(t, o.ExtractSingle(context.Background(), 4, out))
	assert.FileExists(t, out)
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "200", calls[0].Param("-dDEVICEWIDTHPOINTS="))
	assert.True(t, calls[0].Has("<</PageOffset [-10 20]>> setpagedevice"))

	err := o.ExtractSingle(context.Background(), 9, out)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryValidation))
}

func TestCloseHonorsClean(t *testing.T) {
	cfg := testConfig(t, 1, 1)
	o := newTestOrchestrator(t, cfg, testbackend.NewRunner(nil))
	dir := o.Workspace().GetPath()
	require.NoError(t, o.Close())
	assert.DirExists(t, dir, "working area is kept by default")

	cfg = testConfig(t, 1, 1)
	cfg.Workspace.Clean = true
	o = newTestOrchestrator(t, cfg, testbackend.NewRunner(nil))
	dir = o.Workspace().GetPath()
	require.NoError(t, o.Close())
	assert.NoDirExists(t, dir)
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	o := newTestOrchestrator(t, cfg, testbackend.NewRunner(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := o.Run(ctx)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryCanceled))
	assert.NoFileExists(t, cfg.Job.Destination)
}
