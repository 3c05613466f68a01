package kudu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc/rpcfake"
)

func TestBatcher_CountsBufferedOperations(t *testing.T) {
	s := NewSession(mustTestClient(t))
	b := newDefaultBatcher(s)

	assert.False(t, b.HasPendingOperations())
	b.Add(NewInsert(&Table{schema: Schema{KeyColumns: []string{"id"}}}, rpc.Row{}))
	assert.True(t, b.HasPendingOperations())
	assert.Equal(t, 1, b.CountBufferedOperations())
}

func TestBatcher_AbortDiscardsOperations(t *testing.T) {
	s := NewSession(mustTestClient(t))
	b := newDefaultBatcher(s)
	b.Add(NewInsert(&Table{}, rpc.Row{}))

	b.Abort()
	assert.False(t, b.HasPendingOperations())

	var called bool
	b.FlushAsync(func(st *Status) { called = true; assert.Nil(t, st) })
	assert.True(t, called)
}

func TestBatcher_FlushAsyncEmptyIsNoOp(t *testing.T) {
	s := NewSession(mustTestClient(t))
	b := newDefaultBatcher(s)

	var got *Status
	b.FlushAsync(func(st *Status) { got = st })
	assert.Nil(t, got)
}

// TestBatcher_FlushAsync_ServerWriteErrorIsCollectedNotReturned guards the
// propagation policy in SPEC_FULL.md §7: a tablet server's embedded write
// error must land in the session's error collector, never in cb's status.
func TestBatcher_FlushAsync_ServerWriteErrorIsCollectedNotReturned(t *testing.T) {
	master := rpcfake.NewMaster()
	messenger := rpcfake.NewMessenger(master)
	table := newTestTableWith(t, master, messenger, "accounts", "ts1:7050")
	ts := rpcfake.NewTabletServer()
	ts.WriteInline = true
	ts.WriteErr = &rpc.Error{Message: "write rejected: out of range"}
	messenger.AddTabletServer("ts1:7050", ts)

	s := NewSession(table.client)
	require.Nil(t, s.Apply(NewInsert(table, keyedRow(1))))

	status := s.Flush()
	assert.Nil(t, status)
	assert.Equal(t, 1, s.CountPendingErrors())

	errs, overflowed := s.GetPendingErrors()
	require.Len(t, errs, 1)
	assert.False(t, overflowed)
	assert.Contains(t, errs[0].Status.Error(), "write rejected: out of range")
}

func mustTestClient(t *testing.T) *Client {
	t.Helper()
	client, _, _ := newTestClient(t)
	return client
}
