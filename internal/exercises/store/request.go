package store

import (
	"context"
	"sync"
)

const (
	opActiveExercises = "active-exercises"
	opDailySummary    = "daily-summary"
)

// requestTracker tags overlapping fetches of the same operation. Starting a newer
// request cancels the previous one, and only the latest sequence may apply its response.
type requestTracker struct {
	mu      sync.Mutex
	seq     map[string]uint64
	cancels map[string]context.CancelFunc
}

func newRequestTracker() *requestTracker {
	return &requestTracker{
		seq:     make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// start returns the request context and its sequence number. done must be called
// once the response is handled.
func (t *requestTracker) start(ctx context.Context, op string) (context.Context, uint64, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cancel, ok := t.cancels[op]; ok {
		cancel()
	}

	reqCtx, cancel := context.WithCancel(ctx)
	t.seq[op]++
	seq := t.seq[op]
	t.cancels[op] = cancel

	done := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		cancel()
		if t.seq[op] == seq {
			delete(t.cancels, op)
		}
	}

	return reqCtx, seq, done
}

func (t *requestTracker) isLatest(op string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[op] == seq
}
