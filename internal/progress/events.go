package progress

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pagecrop/internal/logfields"
)

// EventType names a progress event.
type EventType string

const (
	EventPageDone     EventType = "page_done"
	EventPageRetry    EventType = "page_retry"
	EventPageFailed   EventType = "page_failed"
	EventMergeStarted EventType = "merge_started"
	EventRunFinished  EventType = "run_finished"
)

// Event is the machine-readable form of a progress notification.
type Event struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"run_id"`
	Page    int       `json:"page,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
	Done    int       `json:"done,omitempty"`
	Total   int       `json:"total,omitempty"`
	Percent float64   `json:"percent,omitempty"`
	Success *bool     `json:"success,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// Sink delivers events somewhere outside the process.
type Sink interface {
	Emit(ev Event) error
	Close() error
}

// JSONLinesSink writes one JSON object per line.
type JSONLinesSink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLinesSink writes events to w. w is not closed by Close.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{w: buf, enc: enc}
}

// OpenJSONLinesFile creates (or truncates) path and writes events to it.
func OpenJSONLinesFile(path string) (*JSONLinesSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	s := NewJSONLinesSink(f)
	s.closer = f
	return s, nil
}

func (s *JSONLinesSink) Emit(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(ev); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *JSONLinesSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// publisher is the subset of *nats.Conn used by NATSSink.
type publisher interface {
	Publish(subj string, data []byte) error
	Flush() error
	Close()
}

// NATSSink publishes events on a core NATS subject.
type NATSSink struct {
	conn    publisher
	subject string
}

// NewNATSSink connects to url and publishes on subject.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("pagecrop"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS event publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSSink{conn: conn, subject: subject}, nil
}

func (s *NATSSink) Emit(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.conn.Publish(s.subject, data)
}

// Close flushes buffered messages before closing the connection.
func (s *NATSSink) Close() error {
	err := s.conn.Flush()
	s.conn.Close()
	return err
}

// EventReporter turns notifications into events for every sink. Sink
// failures are logged and never abort the run.
type EventReporter struct {
	runID string
	sinks []Sink
	now   func() time.Time
}

// NewEventReporter creates a reporter stamping every event with runID.
func NewEventReporter(runID string, sinks ...Sink) *EventReporter {
	return &EventReporter{runID: runID, sinks: sinks, now: time.Now}
}

func (r *EventReporter) emit(ev Event) {
	ev.RunID = r.runID
	ev.Time = r.now().UTC()
	for _, s := range r.sinks {
		if err := s.Emit(ev); err != nil {
			slog.Warn("Failed to emit progress event",
				slog.String("type", string(ev.Type)),
				logfields.Error(err))
		}
	}
}

func (r *EventReporter) PageDone(done, total, page int) {
	r.emit(Event{Type: EventPageDone, Page: page, Done: done, Total: total, Percent: Percent(done, total)})
}

func (r *EventReporter) PageRetry(page, attempt int, err error) {
	r.emit(Event{Type: EventPageRetry, Page: page, Attempt: attempt, Error: errString(err)})
}

func (r *EventReporter) PageFailed(page, attempts int, err error) {
	r.emit(Event{Type: EventPageFailed, Page: page, Attempt: attempts, Error: errString(err)})
}

func (r *EventReporter) MergeStarted(pages int) {
	r.emit(Event{Type: EventMergeStarted, Total: pages})
}

func (r *EventReporter) RunFinished(err error) {
	ok := err == nil
	r.emit(Event{Type: EventRunFinished, Success: &ok, Error: errString(err)})
}

// Close closes every sink, returning the first error.
func (r *EventReporter) Close() error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
