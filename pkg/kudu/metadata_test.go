package kudu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc/rpcfake"
)

func TestMetadataClient_GetTabletProxyDialsFirstReplicaOnly(t *testing.T) {
	client, master, messenger := newTestClient(t)
	master.SetLocations("accounts", []rpc.TabletLocation{
		{TabletID: "t1", Replicas: []rpc.ReplicaLocation{
			{ServerAddress: "ts1:7050"},
			{ServerAddress: "ts2:7050"},
		}},
	})

	ts1 := rpcfake.NewTabletServer()
	messenger.AddTabletServer("ts1:7050", ts1)

	proxy, status := client.metadata.getTabletProxy(context.Background(), "accounts", "t1")
	require.Nil(t, status)
	assert.Same(t, ts1, proxy)
}

func TestMetadataClient_EntryIsCachedByTabletID(t *testing.T) {
	client, _, _ := newTestClient(t)
	e1 := client.metadata.entry("accounts", "t1")
	e2 := client.metadata.entry("accounts", "t1")
	assert.Same(t, e1, e2)
}

func TestMetadataClient_GetTabletProxyNotFoundWithoutReplicas(t *testing.T) {
	client, master, _ := newTestClient(t)
	master.SetLocations("accounts", []rpc.TabletLocation{{TabletID: "t1"}})

	_, status := client.metadata.getTabletProxy(context.Background(), "accounts", "t1")
	require.NotNil(t, status)
	assert.Equal(t, CodeNotFound, status.Code())
}
