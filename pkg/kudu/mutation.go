package kudu

// MutationKind enumerates the write operation a Mutation carries. The
// core currently only specifies Insert (SPEC_FULL.md §3).
type MutationKind int

const (
	// MutationInsert inserts row into table.
	MutationInsert MutationKind = iota
)

// Mutation carries a table reference and a row whose key columns must
// be fully set before Apply accepts it (SPEC_FULL.md §3).
type Mutation struct {
	Kind  MutationKind
	Table *Table
	Row   Row
}

// NewInsert builds an Insert mutation against table.
func NewInsert(table *Table, row Row) Mutation {
	return Mutation{Kind: MutationInsert, Table: table, Row: row}
}

// keySet reports whether m's row has every key column of its owning
// table's schema set.
func (m Mutation) keySet() bool {
	return m.Row.KeySet(m.Table.schema.KeyColumns)
}
