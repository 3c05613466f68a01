package kudu

import (
	"sync"

	"go.uber.org/zap"
)

// FlushMode selects how a Session drains its current batcher. Only
// AutoFlushSync and ManualFlush are implemented in the core (SPEC_FULL.md
// §3); AutoFlushBackground is recognized but not yet scheduled.
type FlushMode int

const (
	AutoFlushSync FlushMode = iota
	AutoFlushBackground
	ManualFlush
)

func (m FlushMode) valid() bool {
	switch m {
	case AutoFlushSync, AutoFlushBackground, ManualFlush:
		return true
	default:
		return false
	}
}

// Session is the user-facing handle that owns the current batcher,
// flush policy, and error collector (SPEC_FULL.md §3). All state is
// protected by mu; batcher methods are never called while mu is held
// (SPEC_FULL.md §5 rule 1).
type Session struct {
	client *Client
	errors *ErrorCollector
	log    *zap.Logger

	mu            sync.Mutex
	flushMode     FlushMode
	timeoutMillis int
	current       Batcher
	currentID     uint64
	inFlight      map[uint64]Batcher
}

// NewSession constructs and initializes a Session bound to client, with
// an empty ManualFlush-mode batcher ready for Apply.
func NewSession(client *Client) *Session {
	s := &Session{
		client:        client,
		errors:        NewErrorCollector(0),
		log:           client.log.With(zap.String("component", "session")),
		flushMode:     ManualFlush,
		timeoutMillis: defaultBatchTimeoutMillis,
		inFlight:      map[uint64]Batcher{},
	}
	s.init()
	return s
}

// init creates the initial batcher under the lock. A Session always has
// a current batcher after init (SPEC_FULL.md §3 invariant).
func (s *Session) init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		panic("kudu: Session initialized twice")
	}
	b := newDefaultBatcher(s)
	s.current = b
	s.currentID = b.id
}

// SetFlushMode changes the flush policy. It fails IllegalState if any
// operation is buffered in the current batcher, and InvalidArgument if
// mode is not one of the enumerated values (SPEC_FULL.md §4.4).
func (s *Session) SetFlushMode(mode FlushMode) *Status {
	if !mode.valid() {
		return InvalidArgument("unknown flush mode %d", mode)
	}

	s.mu.Lock()
	current := s.current
	buffered := current.CountBufferedOperations
	s.mu.Unlock()

	if buffered() > 0 {
		return IllegalState("cannot change flush mode while operations are buffered")
	}

	s.mu.Lock()
	s.flushMode = mode
	s.mu.Unlock()
	return nil
}

// FlushMode reports the session's current flush policy.
func (s *Session) FlushMode() FlushMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushMode
}

// SetTimeoutMillis rejects negative values; otherwise updates the
// session default and propagates it to the current batcher.
func (s *Session) SetTimeoutMillis(ms int) *Status {
	if ms < 0 {
		return InvalidArgument("timeout must not be negative, got %d", ms)
	}

	s.mu.Lock()
	s.timeoutMillis = ms
	current := s.current
	s.mu.Unlock()

	current.SetTimeoutMillis(ms)
	return nil
}

// Apply rejects mutations whose key is not set (IllegalState) and hands
// ownership of m to the current batcher. In AutoFlushSync mode it
// immediately flushes and returns that flush's status; otherwise it
// returns nil (buffered for a later flush).
func (s *Session) Apply(m Mutation) *Status {
	if !m.keySet() {
		return IllegalState("mutation's key columns must be set before Apply")
	}

	s.mu.Lock()
	current := s.current
	mode := s.flushMode
	s.mu.Unlock()

	current.Add(m)

	if mode == AutoFlushSync {
		return s.Flush()
	}
	return nil
}

// Flush is synchronous: it invokes FlushAsync and awaits completion on
// a one-shot synchronizer (SPEC_FULL.md §4.4).
func (s *Session) Flush() *Status {
	latch := newSynchronizer()
	s.FlushAsync(func(st *Status) { latch.finish(st) })
	return latch.wait()
}

// FlushAsync rotates the current batcher under the lock — installing a
// fresh one as current and capturing the previous one into the
// in-flight set — then, outside the lock, drives the previous batcher's
// own FlushAsync. Rotation must stay outside the batcher call: a batch
// may complete inline (including on the calling goroutine) and call
// back into the session, which would deadlock if mu were still held
// (SPEC_FULL.md §4.4, §5 rule 1).
func (s *Session) FlushAsync(userCB func(*Status)) {
	s.mu.Lock()
	prev := s.current
	prevID := s.currentID
	next := newDefaultBatcher(s)
	next.timeoutMillis = s.timeoutMillis
	s.current = next
	s.currentID = next.id
	s.inFlight[prevID] = prev
	s.mu.Unlock()

	prev.FlushAsync(func(st *Status) {
		s.flushFinished(prevID)
		if userCB != nil {
			userCB(st)
		}
	})
}

// flushFinished removes batcher id from the in-flight set. It is a
// programming error if it was not present (SPEC_FULL.md §4.4).
func (s *Session) flushFinished(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[id]; !ok {
		panic("kudu: FlushFinished called for a batcher that was not in flight")
	}
	delete(s.inFlight, id)
}

// HasPendingOperations is true if the current batcher or any in-flight
// batcher has pending operations.
func (s *Session) HasPendingOperations() bool {
	s.mu.Lock()
	batchers := make([]Batcher, 0, len(s.inFlight)+1)
	batchers = append(batchers, s.current)
	for _, b := range s.inFlight {
		batchers = append(batchers, b)
	}
	s.mu.Unlock()

	for _, b := range batchers {
		if b.HasPendingOperations() {
			return true
		}
	}
	return false
}

// CountBufferedOperations is only meaningful in ManualFlush mode; it
// returns the current batcher's buffered count.
func (s *Session) CountBufferedOperations() (int, *Status) {
	s.mu.Lock()
	mode := s.flushMode
	current := s.current
	s.mu.Unlock()

	if mode != ManualFlush {
		return 0, IllegalState("CountBufferedOperations is only valid in ManualFlush mode")
	}
	return current.CountBufferedOperations(), nil
}

// CountPendingErrors delegates to the error collector.
func (s *Session) CountPendingErrors() int {
	return s.errors.CountErrors()
}

// GetPendingErrors delegates to the error collector, transferring
// ownership of the collected errors to the caller.
func (s *Session) GetPendingErrors() (errs []OpError, overflowed bool) {
	return s.errors.Drain()
}

// Close tears down the session. If the current batcher still has
// pending operations, it is logged as a warning and Aborted; in-flight
// batchers continue to completion against the still-valid error
// collector (SPEC_FULL.md §4.4, §9 — batchers may outlive their owning
// session).
func (s *Session) Close() {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current.HasPendingOperations() {
		s.log.Warn("closing session with unflushed operations; aborting current batch")
		current.Abort()
	}
}
