package kudu

import "sync"

// synchronizer is the one-shot latch + status cell SPEC_FULL.md §9
// calls for: it adapts an asynchronous callback into a blocking wait,
// used by Session.Flush and the metadata client's tablet Refresh.
type synchronizer struct {
	once sync.Once
	done chan struct{}
	st   *Status
}

func newSynchronizer() *synchronizer {
	return &synchronizer{done: make(chan struct{})}
}

// finish records st (nil means success) and wakes any waiter. Safe to
// call at most meaningfully once; subsequent calls are no-ops.
func (s *synchronizer) finish(st *Status) {
	s.once.Do(func() {
		s.st = st
		close(s.done)
	})
}

// wait blocks until finish is called and returns the recorded status.
func (s *synchronizer) wait() *Status {
	<-s.done
	return s.st
}
