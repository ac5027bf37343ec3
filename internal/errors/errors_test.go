package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagecropError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PagecropError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("exit status 1"), CategoryMerge, SeverityFatal, "merge failed"),
			expected: "merge (fatal): merge failed: exit status 1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	attempt := ExtractionAttemptFailed(3, ErrExtractionFailed)
	wrapped := fmt.Errorf("dispatch: %w", attempt)

	require.True(t, IsRetryable(wrapped))
	require.True(t, IsCategory(wrapped, CategoryExtraction))
	require.True(t, stdErrors.Is(wrapped, ErrExtractionFailed))
	require.Equal(t, 3, attempt.Context["page"])

	fatal := PageFatal(3, 5, attempt)
	require.False(t, IsRetryable(fatal))
	require.Equal(t, CategoryExtraction, GetCategory(fatal))
	require.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stdErrors.New("plain"), 1},
		{ValidationFailed("page_range", "last < first"), 2},
		{ConfigNotFound("job.yaml"), 7},
		{PageFatal(2, 5, ErrExtractionFailed), 11},
		{MergeFailed("out.pdf", ErrMergeFailed), 11},
		{InternalError("boom", nil), 10},
	}
	for _, c := range cases {
		require.Equal(t, c.want, a.ExitCodeFor(c.err), "err=%v", c.err)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out
	code := -1
	a.exit = func(c int) { code = c }

	a.HandleError(PageFatal(2, 5, ErrExtractionFailed))

	require.Equal(t, 11, code)
	require.Contains(t, out.String(), "extraction: page extraction failed after retries")
	require.Contains(t, out.String(), "page=2")
	require.Contains(t, logs.String(), "category=extraction")
}
