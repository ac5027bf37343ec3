package progress

// Reporter receives run progress notifications. Implementations must be safe
// for concurrent use; page workers call them directly.
type Reporter interface {
	// PageDone is called once per page after its artifact was written.
	PageDone(done, total, page int)
	// PageRetry is called after a failed attempt that will be retried.
	PageRetry(page, attempt int, err error)
	// PageFailed is called once when a page gives up.
	PageFailed(page, attempts int, err error)
	MergeStarted(pages int)
	RunFinished(err error)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) PageDone(int, int, int)     {}
func (Nop) PageRetry(int, int, error)  {}
func (Nop) PageFailed(int, int, error) {}
func (Nop) MergeStarted(int)           {}
func (Nop) RunFinished(error)          {}

// Multi fans out notifications to several reporters in order.
type Multi []Reporter

func (m Multi) PageDone(done, total, page int) {
	for _, r := range m {
		r.PageDone(done, total, page)
	}
}

func (m Multi) PageRetry(page, attempt int, err error) {
	for _, r := range m {
		r.PageRetry(page, attempt, err)
	}
}

func (m Multi) PageFailed(page, attempts int, err error) {
	for _, r := range m {
		r.PageFailed(page, attempts, err)
	}
}

func (m Multi) MergeStarted(pages int) {
	for _, r := range m {
		r.MergeStarted(pages)
	}
}

func (m Multi) RunFinished(err error) {
	for _, r := range m {
		r.RunFinished(err)
	}
}
