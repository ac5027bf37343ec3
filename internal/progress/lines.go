package progress

import (
	"io"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LineReporter prints one line per completed page, e.g. "3/12 (25.0%) page 7".
// Retries and failures are left to the logger.
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
	p  *message.Printer
}

// NewLineReporter writes to w, formatting numbers for locale (BCP 47, e.g.
// "en", "de-CH"). An unparsable locale falls back to English.
func NewLineReporter(w io.Writer, locale string) *LineReporter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &LineReporter{w: w, p: message.NewPrinter(tag)}
}

func (r *LineReporter) PageDone(done, total, page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.p.Fprintf(r.w, "%d/%d (%.1f%%) page %d\n", done, total, Percent(done, total), page)
}

func (r *LineReporter) PageRetry(int, int, error)  {}
func (r *LineReporter) PageFailed(int, int, error) {}

func (r *LineReporter) MergeStarted(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, "Merging...\n")
}

func (r *LineReporter) RunFinished(error) {}
