package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/testbackend"
)

func newExtractor(runner *testbackend.Runner, opts Options) *Extractor {
	if opts.Source == "" {
		opts.Source = "/docs/source.pdf"
	}
	return New(backend.Static(testbackend.Binary), runner, opts)
}

func TestArgs_FullPage(t *testing.T) {
	e := newExtractor(nil, Options{})
	require.Equal(t, []string{
		"-dBATCH", "-dNOPAUSE", "-q", "-dSAFER", "-sDEVICE=pdfwrite",
		"-dFirstPage=2", "-dLastPage=2",
		"-sOutputFile=/work/2.pdf",
		"/docs/source.pdf",
	}, e.Args(2, "/work/2.pdf", nil))
}

func TestArgs_Cropped(t *testing.T) {
	e := newExtractor(nil, Options{Resolution: 300})
	g := &geometry.Geometry{Width: 300, Height: 550, OffsetX: -100, OffsetY: 50}
	require.Equal(t, []string{
		"-dBATCH", "-dNOPAUSE", "-q", "-dSAFER", "-sDEVICE=pdfwrite",
		"-r300",
		"-dFirstPage=1", "-dLastPage=1",
		"-sOutputFile=/work/1.pdf",
		"-dFIXEDMEDIA",
		"-dDEVICEWIDTHPOINTS=300",
		"-dDEVICEHEIGHTPOINTS=550",
		"-c", "<</PageOffset [-100 50]>> setpagedevice",
		"-f", "/docs/source.pdf",
	}, e.Args(1, "/work/1.pdf", g))
}

func TestArgs_Idempotent(t *testing.T) {
	e := newExtractor(nil, Options{})
	g := &geometry.Geometry{Width: 10, Height: 20, OffsetX: -1, OffsetY: 2}
	require.Equal(t, e.Args(4, "/w/4.pdf", g), e.Args(4, "/w/4.pdf", g))
}

func TestArgs_ZeroBasedMapping(t *testing.T) {
	e := newExtractor(nil, Options{BackendPage: func(p int) int { return p + 1 }})
	args := e.Args(0, "/w/0.pdf", nil)
	require.Contains(t, args, "-dFirstPage=1")
	require.Contains(t, args, "-sOutputFile=/w/0.pdf")
}

func TestExtract_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	runner := testbackend.NewRunner(nil)
	e := newExtractor(runner, Options{})
	artifact := filepath.Join(dir, "3.pdf")

	require.NoError(t, e.Extract(context.Background(), 3, artifact, nil))
	_, err := os.Stat(artifact)
	require.NoError(t, err)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, testbackend.Binary, calls[0].Command.Name)
	require.Equal(t, DefaultTimeout, calls[0].Command.Timeout)
	require.False(t, calls[0].Has("-dFIXEDMEDIA"))
}

func TestExtract_FailureIsRetryable(t *testing.T) {
	dir := t.TempDir()
	runner := testbackend.NewRunner(testbackend.FailPage(2))
	e := newExtractor(runner, Options{})
	artifact := filepath.Join(dir, "2.pdf")
	require.NoError(t, os.WriteFile(artifact, []byte("stale"), 0o600))

	err := e.Extract(context.Background(), 2, artifact, nil)
	require.ErrorIs(t, err, perrors.ErrExtractionFailed)
	require.True(t, perrors.IsRetryable(err))
	_, statErr := os.Stat(artifact)
	require.True(t, os.IsNotExist(statErr), "stale artifact must be removed before the attempt")
}

func TestExtract_TimeoutIsExtractionFailure(t *testing.T) {
	runner := testbackend.NewRunner(func(testbackend.Call) error {
		return perrors.ErrTimeout
	})
	e := newExtractor(runner, Options{})
	err := e.Extract(context.Background(), 1, filepath.Join(t.TempDir(), "1.pdf"), nil)
	require.ErrorIs(t, err, perrors.ErrExtractionFailed)
	require.ErrorIs(t, err, perrors.ErrTimeout)
	require.True(t, perrors.IsRetryable(err))
}

func TestExtract_MissingBackendIsNotRetryable(t *testing.T) {
	e := New(backend.Static(""), testbackend.NewRunner(nil), Options{Source: "x.pdf"})
	err := e.Extract(context.Background(), 1, filepath.Join(t.TempDir(), "1.pdf"), nil)
	require.ErrorIs(t, err, perrors.ErrBinaryNotFound)
	require.False(t, perrors.IsRetryable(err))
}

func TestExtract_CanceledIsNotRetryable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := testbackend.NewRunner(func(testbackend.Call) error { return context.Canceled })
	e := newExtractor(runner, Options{})
	err := e.Extract(ctx, 1, filepath.Join(t.TempDir(), "1.pdf"), nil)
	require.True(t, perrors.IsCategory(err, perrors.CategoryCanceled))
	require.False(t, perrors.IsRetryable(err))
}
