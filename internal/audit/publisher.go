package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tenet/pkg/platform/sentinel"
)

// Sink persists audit events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Append(ctx context.Context, event Event) error
	Close() error
}

// Publisher assigns ids and timestamps and hands events to a sink.
// Fail-open: a sink failure is logged, never surfaced to the screening
// caller - an unrecorded decision must not block the decision itself.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// NewPublisher creates a publisher over the given sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records one event and returns its audit id. The id is valid even when
// the sink write failed; the failure is logged for operators.
func (p *Publisher) Emit(ctx context.Context, event Event) string {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"audit_id", event.ID,
			"ticker", event.Ticker,
			"error", err,
		)
	}
	return event.ID.String()
}

// Close flushes and closes the underlying sink.
func (p *Publisher) Close() error {
	return p.sink.Close()
}

// MemorySink keeps events in process memory. Used in tests and when no
// broker is configured.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
	closed bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores the event. Appending to a closed sink is a lifecycle bug in
// the caller, not a storage failure.
func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("append to closed audit sink: %w", sentinel.ErrInvalidState)
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far, in order.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Find returns the event with the given audit id.
func (s *MemorySink) Find(auditID string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID.String() == auditID {
			return ev, nil
		}
	}
	return Event{}, fmt.Errorf("audit event %s not found", auditID)
}

// Close marks the sink closed; later appends fail.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
