package kudu

import "github.com/goradiap/incubator-kudu/pkg/kudu/rpc"

// AlterTableBuilder accumulates an ordered sequence of schema-mutation
// steps plus an optional new table name, per SPEC_FULL.md §3.
type AlterTableBuilder struct {
	newName *string
	steps   []rpc.AlterStep
}

// NewAlterTableBuilder returns an empty builder.
func NewAlterTableBuilder() *AlterTableBuilder {
	return &AlterTableBuilder{}
}

// RenameTo records the table's new name.
func (b *AlterTableBuilder) RenameTo(name string) *AlterTableBuilder {
	b.newName = &name
	return b
}

// AddColumn appends an AddColumn step.
func (b *AlterTableBuilder) AddColumn(col ColumnSchema) *AlterTableBuilder {
	b.steps = append(b.steps, rpc.AlterStep{Kind: rpc.AlterAddColumn, Column: col})
	return b
}

// AddNullableColumn appends an AddNullableColumn step.
func (b *AlterTableBuilder) AddNullableColumn(col ColumnSchema) *AlterTableBuilder {
	col.Nullable = true
	b.steps = append(b.steps, rpc.AlterStep{Kind: rpc.AlterAddNullableColumn, Column: col})
	return b
}

// DropColumn appends a DropColumn step.
func (b *AlterTableBuilder) DropColumn(name string) *AlterTableBuilder {
	b.steps = append(b.steps, rpc.AlterStep{Kind: rpc.AlterDropColumn, OldName: name})
	return b
}

// RenameColumn appends a RenameColumn step.
func (b *AlterTableBuilder) RenameColumn(oldName, newName string) *AlterTableBuilder {
	b.steps = append(b.steps, rpc.AlterStep{Kind: rpc.AlterRenameColumn, OldName: oldName, NewName: newName})
	return b
}

// hasChanges is true iff the new name is set or at least one step
// exists (SPEC_FULL.md §3).
func (b *AlterTableBuilder) hasChanges() bool {
	return b.newName != nil || len(b.steps) > 0
}

// targetName returns the table's effective name after this alter: the
// new name when a rename is present, otherwise oldName.
func (b *AlterTableBuilder) targetName(oldName string) string {
	if b.newName != nil {
		return *b.newName
	}
	return oldName
}

func (b *AlterTableBuilder) toRequest(tableName string) *rpc.AlterTableRequest {
	return &rpc.AlterTableRequest{
		TableName:    tableName,
		Steps:        append([]rpc.AlterStep(nil), b.steps...),
		NewTableName: b.newName,
	}
}
