package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// BarReporter renders a progress bar during extraction and a spinner while
// merging. Intended for interactive terminals.
type BarReporter struct {
	mu      sync.Mutex
	w       io.Writer
	bar     *progressbar.ProgressBar
	spinner *spinner.Spinner
}

// NewBarReporter writes to w. The bar is sized on the first completed page.
func NewBarReporter(w io.Writer) *BarReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Merging..."
	s.Writer = w
	return &BarReporter{w: w, spinner: s}
}

func (r *BarReporter) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Extracting pages"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(r.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (r *BarReporter) PageDone(done, total, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		r.bar = r.newBar(total)
	}
	_ = r.bar.Set(done)
}

func (r *BarReporter) PageRetry(int, int, error) {}

func (r *BarReporter) PageFailed(int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Exit()
	}
}

func (r *BarReporter) MergeStarted(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	r.spinner.Start()
}

func (r *BarReporter) RunFinished(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spinner.Stop()
}
