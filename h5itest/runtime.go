package h5itest

import (
	"sync"
	"testing"

	"github.com/obinnaokechukwu/h5go"
	"go.uber.org/zap/zaptest"
)

// NewRuntime returns a runtime over a fresh Library, logging to tb.
// At cleanup it fails the test if any native calls overlapped.
func NewRuntime(tb testing.TB, opts ...Option) (*h5go.Runtime, *Library) {
	tb.Helper()
	lib := NewLibrary(opts...)
	sink := &quietAfterCleanup{TB: tb}
	rt := h5go.NewRuntime(lib, h5go.WithLogger(zaptest.NewLogger(sink)))
	tb.Cleanup(func() {
		sink.stop()
		if v := lib.Violations(); v != 0 {
			tb.Errorf("h5itest: %d overlapping native calls", v)
		}
	})
	return rt, lib
}

// quietAfterCleanup drops log output once the test has finished. Handles
// leaked by a test are closed later by finalizers, and logging to a
// completed test panics.
type quietAfterCleanup struct {
	testing.TB

	mu   sync.Mutex
	done bool
}

func (q *quietAfterCleanup) stop() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
}

func (q *quietAfterCleanup) Logf(format string, args ...any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.done {
		q.TB.Logf(format, args...)
	}
}

func (q *quietAfterCleanup) Errorf(format string, args ...any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.done {
		q.TB.Errorf(format, args...)
	}
}
