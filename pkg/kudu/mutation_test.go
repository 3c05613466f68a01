package kudu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

func TestMutation_KeySet(t *testing.T) {
	table := &Table{name: "t", schema: Schema{KeyColumns: []string{"id"}}}

	withKey := NewInsert(table, rpc.Row{KeyColumnsSet: map[string]bool{"id": true}})
	assert.True(t, withKey.keySet())

	withoutKey := NewInsert(table, rpc.Row{})
	assert.False(t, withoutKey.keySet())
}

func TestMutation_NewInsert(t *testing.T) {
	table := &Table{name: "t"}
	row := rpc.Row{Values: map[string]any{"id": 1}}
	m := NewInsert(table, row)
	assert.Equal(t, MutationInsert, m.Kind)
	assert.Same(t, table, m.Table)
	assert.Equal(t, row, m.Row)
}
