// Package notify publishes issued-code events to interested downstream
// listeners. Delivery is best effort and fully decoupled from the
// issuance call: events are queued after the record is durably persisted
// and dispatch failures are logged, never surfaced to the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventPostIssueCode is emitted once per successfully issued code.
const EventPostIssueCode = "post-issue-code"

// Payload is the fixed event payload. Consumers match on field names, so
// the shape is typed rather than a free-form property map.
type Payload struct {
	CodeID         string `json:"code_id"`
	SessionDataKey string `json:"session_data_key,omitempty"`
}

// Sink delivers a single event to its destination.
type Sink interface {
	Deliver(ctx context.Context, event string, payload Payload) error
}

const deliverTimeout = 5 * time.Second

type envelope struct {
	event   string
	payload Payload
}

// Dispatcher fans events out to a Sink from a background worker.
// A nil *Dispatcher is valid and drops every event, which is how the
// feature is disabled.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan envelope
	done   chan struct{}
}

// NewDispatcher starts the delivery worker. buffer bounds how many
// undelivered events may be pending; once full, new events are dropped
// (delivery is at-most-once).
func NewDispatcher(sink Sink, logger *slog.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}

	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan envelope, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit enqueues an event for asynchronous delivery. It never blocks and
// never fails: a full queue or closed dispatcher drops the event with a
// warning.
func (d *Dispatcher) Emit(event string, payload Payload) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("event dropped: dispatcher closed", "event", event, "code_id", payload.CodeID)
		return
	}

	select {
	case d.queue <- envelope{event: event, payload: payload}:
	default:
		d.logger.Warn("event dropped: queue full", "event", event, "code_id", payload.CodeID)
	}
}

// Close stops accepting events, drains the queue and waits for the
// worker to finish. Safe to call on a nil dispatcher.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := d.sink.Deliver(ctx, env.event, env.payload); err != nil {
			d.logger.Error("event delivery failed",
				"event", env.event,
				"code_id", env.payload.CodeID,
				"error", err,
			)
		}
		cancel()
	}
}

// LoggingSink writes events to the structured log. It is the default
// sink when no broker is configured.
type LoggingSink struct {
	Logger *slog.Logger
}

func (s LoggingSink) Deliver(ctx context.Context, event string, payload Payload) error {
	s.Logger.InfoContext(ctx, "published event",
		"event", event,
		"code_id", payload.CodeID,
		"session_data_key", payload.SessionDataKey,
	)
	return nil
}
