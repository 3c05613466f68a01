package kudu

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// defaultBatchTimeoutMillis is the batcher's starting per-flush
// timeout before Session.SetTimeoutMillis or SetTimeoutMillis overrides
// it.
const defaultBatchTimeoutMillis = 5000

// Batcher is the bounded accumulator of mutations a Session rotates
// through on every flush. Its internal scheduling (when/how it talks to
// a tablet server) is outside the core's contract (SPEC_FULL.md §3) —
// the core only relies on this lifecycle.
type Batcher interface {
	Add(m Mutation)
	HasPendingOperations() bool
	CountBufferedOperations() int
	SetTimeoutMillis(ms int)
	FlushAsync(cb func(*Status))
	Abort()
}

var batcherSeq atomic.Uint64

// defaultBatcher is the one concrete Batcher this module ships,
// grounded on the teacher's SampleBuffer (buffer.go): a mutex-protected
// slice standing in for the ring buffer, since batch order (not
// overflow eviction) is what matters for a write batch. The slice has
// no capacity limit: Add never rejects or drops an operation.
type defaultBatcher struct {
	id     uint64
	errors *ErrorCollector
	log    *zap.Logger

	mu            sync.Mutex
	ops           []rpc.WriteOp
	lastTable     *Table
	timeoutMillis int
	aborted       bool
}

func newDefaultBatcher(s *Session) *defaultBatcher {
	id := batcherSeq.Add(1)
	return &defaultBatcher{
		id:            id,
		errors:        s.errors,
		log:           s.client.log.With(zap.String("component", "batcher"), zap.Uint64("batcher_id", id)),
		timeoutMillis: defaultBatchTimeoutMillis,
	}
}

func (b *defaultBatcher) Add(m Mutation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, rpc.WriteOp{Kind: rpc.WriteInsert, Row: m.Row})
	b.lastTable = m.Table
}

func (b *defaultBatcher) HasPendingOperations() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops) > 0
}

func (b *defaultBatcher) CountBufferedOperations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

func (b *defaultBatcher) SetTimeoutMillis(ms int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeoutMillis = ms
}

// Abort discards buffered operations without attempting to flush them.
// Called by the session on destruction when the current batcher still
// has pending operations (SPEC_FULL.md §4.4).
func (b *defaultBatcher) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aborted = true
	b.ops = nil
}

// FlushAsync sends the buffered operations to the owning table's tablet
// server and invokes cb exactly once with the resulting Status.
// Mutation-level failures are recorded into the error collector rather
// than returned from cb (SPEC_FULL.md §7) — cb only reports whether the
// flush dispatch itself (not the server's verdict) could be attempted.
func (b *defaultBatcher) FlushAsync(cb func(*Status)) {
	b.mu.Lock()
	ops := b.ops
	aborted := b.aborted
	table := b.lastTable
	timeoutMillis := b.timeoutMillis
	b.ops = nil
	b.mu.Unlock()

	if aborted || len(ops) == 0 || table == nil {
		cb(nil)
		return
	}

	proxy, status := table.tabletProxyFor(context.Background())
	if status != nil {
		for _, op := range ops {
			b.errors.Add(OpError{FailedOp: op, Status: status})
		}
		cb(status)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMillis)*time.Millisecond)
	proxy.WriteBatchAsync(ctx, &rpc.WriteBatchRequest{TabletID: table.tabletID, Ops: ops}, func(resp *rpc.WriteBatchResponse, err error) {
		defer cancel()
		var flushStatus *Status
		switch {
		case err != nil:
			flushStatus = Passthrough(err.Error())
		case resp.Error != nil:
			flushStatus = Passthrough(resp.Error.Message)
		}
		if flushStatus != nil {
			for _, op := range ops {
				b.errors.Add(OpError{FailedOp: op, Status: flushStatus})
			}
			b.log.Warn("batch flush failed", zap.String("tablet_id", table.tabletID), zap.Error(flushStatus))
		}
		// The server's write verdict is never handed to cb — only dispatch
		// failures (e.g. no tablet proxy, above) are. See SPEC_FULL.md §7.
		cb(nil)
	})
}
