// Package telemetry records product analytics events. Track is fire-and-
// forget by type: it returns nothing, so a telemetry outage can never
// propagate into a caller's error path. Events flow through a bounded
// buffer; when the buffer is full new events are dropped, never blocked on.
package telemetry

import (
	"context"
	"sync"
	"time"

	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

// Event is one analytics data point.
type Event struct {
	Name       string
	UserID     uuid.UUID
	SiteID     *uuid.UUID
	Properties map[string]any
	OccurredAt time.Time
}

// Store persists telemetry events.
type Store interface {
	Insert(ctx context.Context, event Event) error
}

// Sink buffers and persists telemetry events in the background.
type Sink struct {
	store  Store
	log    *logger.Logger
	buffer chan Event

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// NewSink creates a sink with the given buffer size and starts its drain
// goroutine. bufferSize values below 1 fall back to 256.
func NewSink(store Store, bufferSize int, log *logger.Logger) *Sink {
	if bufferSize < 1 {
		bufferSize = 256
	}
	s := &Sink{
		store:   store,
		log:     log,
		buffer:  make(chan Event, bufferSize),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go s.drain()
	return s
}

// Track enqueues an event. It never blocks and never reports failure; when
// the buffer is full the event is dropped and counted in debug logs.
func (s *Sink) Track(_ context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	select {
	case <-s.done:
	case s.buffer <- event:
	default:
		s.log.TelemetryDropped(event.Name)
	}
}

// Close stops accepting events, drains what is already buffered, and waits
// for the drain goroutine to finish.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.drained
}

func (s *Sink) drain() {
	defer close(s.drained)

	for {
		select {
		case event := <-s.buffer:
			s.persist(event)
		case <-s.done:
			for {
				select {
				case event := <-s.buffer:
					s.persist(event)
				default:
					return
				}
			}
		}
	}
}

// persist runs off the request path with its own deadline. Failures are
// swallowed: telemetry must never matter to correctness.
func (s *Sink) persist(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Insert(ctx, event); err != nil {
		s.log.Debug("telemetry insert failed", "event", event.Name, "error", err)
	}
}
