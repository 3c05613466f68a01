package kudu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

func TestCreateTable_NoWait(t *testing.T) {
	client, _, _ := newTestClient(t)

	status := client.CreateTable(context.Background(), "accounts", CreateTableOptions{
		Schema: Schema{KeyColumns: []string{"id"}},
	})
	assert.Nil(t, status)
}

func TestCreateTable_WaitAssignmentPollsUntilDone(t *testing.T) {
	client, master, _ := newTestClient(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		master.FinishCreate("accounts")
	}()

	status := client.CreateTable(context.Background(), "accounts", CreateTableOptions{
		Schema:         Schema{KeyColumns: []string{"id"}},
		WaitAssignment: true,
	})
	assert.Nil(t, status)
}

func TestCreateTable_AlreadyExists(t *testing.T) {
	client, _, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{}))

	status := client.CreateTable(context.Background(), "accounts", CreateTableOptions{})
	require.NotNil(t, status)
	assert.Equal(t, CodePassthrough, status.Code())
}

func TestAlterTable_RequiresChanges(t *testing.T) {
	client, _, _ := newTestClient(t)
	status := client.AlterTable(context.Background(), "accounts", NewAlterTableBuilder(), false)
	require.NotNil(t, status)
	assert.Equal(t, CodeInvalidArgument, status.Code())
}

func TestAlterTable_RenameWaitsUnderNewName(t *testing.T) {
	client, master, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{}))

	go func() {
		time.Sleep(20 * time.Millisecond)
		master.FinishAlter("accounts_v2")
	}()

	builder := NewAlterTableBuilder().RenameTo("accounts_v2")
	status := client.AlterTable(context.Background(), "accounts", builder, true)
	assert.Nil(t, status)
}

func TestDeleteTable(t *testing.T) {
	client, _, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{}))
	assert.Nil(t, client.DeleteTable(context.Background(), "accounts"))

	_, status := client.GetTableSchema(context.Background(), "accounts")
	require.NotNil(t, status)
	assert.Equal(t, CodePassthrough, status.Code())
}

func TestGetTableSchema_StripsServerIDs(t *testing.T) {
	client, _, _ := newTestClient(t)
	id := int32(7)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{
		Schema: Schema{Columns: []rpc.ColumnSchema{{Name: "id", ServerAssignedID: &id}}},
	}))

	schema, status := client.GetTableSchema(context.Background(), "accounts")
	require.Nil(t, status)
	require.Len(t, schema.Columns, 1)
	assert.Nil(t, schema.Columns[0].ServerAssignedID)
}

func TestGetTableLocations_RejectsZeroMax(t *testing.T) {
	client, master, _ := newTestClient(t)
	master.SetLocations("accounts", []rpc.TabletLocation{{TabletID: "t1"}})

	_, status := client.GetTableLocations(context.Background(), "accounts", "", 0)
	require.NotNil(t, status)
	assert.Contains(t, status.Error(), "must be greater than 0")
}

func TestGetTableLocations_FiltersByStartKey(t *testing.T) {
	client, master, _ := newTestClient(t)
	master.SetLocations("accounts", []rpc.TabletLocation{
		{TabletID: "t1", StartKey: "", EndKey: "m"},
		{TabletID: "t2", StartKey: "m", EndKey: ""},
	})

	locs, status := client.GetTableLocations(context.Background(), "accounts", "m", 50)
	require.Nil(t, status)
	require.Len(t, locs, 1)
	assert.Equal(t, "t2", locs[0].TabletID)
}

func TestOpenTable(t *testing.T) {
	client, master, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{
		Schema: Schema{KeyColumns: []string{"id"}},
	}))
	master.SetLocations("accounts", []rpc.TabletLocation{{TabletID: "t1"}})

	table, status := client.OpenTable(context.Background(), "accounts")
	require.Nil(t, status)
	assert.Equal(t, "accounts", table.Name())
	assert.Equal(t, "t1", table.TabletID())
}

func TestOpenTable_PollsUntilTabletAssigned(t *testing.T) {
	client, master, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{}))

	go func() {
		time.Sleep(50 * time.Millisecond)
		master.SetLocations("accounts", []rpc.TabletLocation{{TabletID: "t1"}})
	}()

	table, status := client.OpenTable(context.Background(), "accounts")
	require.Nil(t, status)
	assert.Equal(t, "t1", table.TabletID())
}

func TestOpenTable_BoundedByContext(t *testing.T) {
	client, _, _ := newTestClient(t)
	require.Nil(t, client.CreateTable(context.Background(), "accounts", CreateTableOptions{}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, status := client.OpenTable(ctx, "accounts")
	require.NotNil(t, status)
	assert.Equal(t, CodeTimedOut, status.Code())
}
