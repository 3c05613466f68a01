package kudu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc/rpcfake"
)

func newTestClient(t *testing.T) (*Client, *rpcfake.Master, *rpcfake.Messenger) {
	t.Helper()
	master := rpcfake.NewMaster()
	messenger := rpcfake.NewMessenger(master)

	client, err := NewClient(context.Background(), ClientOptions{
		MasterAddress: "master:7051",
		Messenger:     messenger,
		Resolver:      rpcfake.NewResolver(),
		Logger:        zap.NewNop(),
	})
	require.NoError(t, err)
	return client, master, messenger
}

func TestNewClient_RejectsMissingMasterAddress(t *testing.T) {
	_, err := NewClient(context.Background(), ClientOptions{})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func TestNewClient_Succeeds(t *testing.T) {
	client, _, _ := newTestClient(t)
	assert.True(t, client.initted.Load())
}

func TestClient_RequireInittedPanicsOnZeroValue(t *testing.T) {
	var c Client
	assert.Panics(t, func() { c.requireInitted() })
}
