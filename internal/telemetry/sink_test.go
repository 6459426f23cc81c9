package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type captureStore struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
	err    error
}

func (s *captureStore) Insert(_ context.Context, event Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestTrack_EventsReachTheStore(t *testing.T) {
	store := &captureStore{}
	sink := NewSink(store, 16, logger.New("development"))

	sink.Track(context.Background(), Event{Name: "chat.message", UserID: uuid.New()})
	sink.Track(context.Background(), Event{Name: "tool.dispatch", UserID: uuid.New()})
	sink.Close()

	if store.count() != 2 {
		t.Fatalf("expected 2 persisted events, got %d", store.count())
	}
}

func TestTrack_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	store := &captureStore{block: make(chan struct{})}
	sink := NewSink(store, 1, logger.New("development"))

	// First event occupies the drain goroutine, second fills the buffer,
	// the rest must be dropped without blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sink.Track(context.Background(), Event{Name: "burst", UserID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Track blocked on a full buffer")
	}

	close(store.block)
	sink.Close()

	if store.count() >= 10 {
		t.Fatalf("expected drops under backpressure, got %d persisted", store.count())
	}
}

func TestTrack_StoreFailureIsSwallowed(t *testing.T) {
	store := &captureStore{err: errors.New("db down")}
	sink := NewSink(store, 4, logger.New("development"))

	// Must not panic or surface the error anywhere.
	sink.Track(context.Background(), Event{Name: "chat.message", UserID: uuid.New()})
	sink.Close()
}

func TestTrack_FillsOccurredAt(t *testing.T) {
	store := &captureStore{}
	sink := NewSink(store, 4, logger.New("development"))

	sink.Track(context.Background(), Event{Name: "chat.message", UserID: uuid.New()})
	sink.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.events) != 1 || store.events[0].OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to be filled in")
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	sink := NewSink(&captureStore{}, 4, logger.New("development"))
	sink.Close()
	sink.Close()
}
