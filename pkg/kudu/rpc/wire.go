package rpc

// Error is the embedded error shape every RPC response may carry. A
// response with a non-nil Error signals a semantic failure even though
// the RPC itself completed (SPEC_FULL.md §6, §7).
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// ColumnSchema describes a single column. ServerAssignedID is populated
// by the master on GetTableSchema responses and stripped by the core
// before handing the schema back to callers (SPEC_FULL.md §4.2).
type ColumnSchema struct {
	Name             string
	Type             string
	Nullable         bool
	ServerAssignedID *int32
}

// Schema is the opaque row/column contract the core passes through to
// row encoding (out of scope) and compares for table identity.
type Schema struct {
	Columns    []ColumnSchema
	KeyColumns []string
}

// WithoutServerIDs returns a copy of s with every column's
// ServerAssignedID cleared, per GetTableSchema's contract.
func (s Schema) WithoutServerIDs() Schema {
	cols := make([]ColumnSchema, len(s.Columns))
	for i, c := range s.Columns {
		c.ServerAssignedID = nil
		cols[i] = c
	}
	return Schema{Columns: cols, KeyColumns: append([]string(nil), s.KeyColumns...)}
}

// AlterStepKind enumerates the alter-table operations an
// AlterTableRequest may carry.
type AlterStepKind int

const (
	AlterAddColumn AlterStepKind = iota
	AlterAddNullableColumn
	AlterDropColumn
	AlterRenameColumn
)

// AlterStep is one accumulated step of an alter-table operation.
type AlterStep struct {
	Kind       AlterStepKind
	Column     ColumnSchema
	OldName    string
	NewName    string
}

// CreateTableRequest / CreateTableResponse.
type CreateTableRequest struct {
	Name          string
	Schema        Schema
	PreSplitKeys  [][]byte
	WaitAssignment bool
}

type CreateTableResponse struct {
	Error *Error
}

type IsCreateTableDoneRequest struct {
	TableName string
}

type IsCreateTableDoneResponse struct {
	Error *Error
	Done  bool
}

// AlterTableRequest / AlterTableResponse.
type AlterTableRequest struct {
	TableName    string
	Steps        []AlterStep
	NewTableName *string
}

type AlterTableResponse struct {
	Error *Error
}

type IsAlterTableDoneRequest struct {
	TableName string
}

type IsAlterTableDoneResponse struct {
	Error *Error
	Done  bool
}

// DeleteTableRequest / DeleteTableResponse.
type DeleteTableRequest struct {
	TableName string
}

type DeleteTableResponse struct {
	Error *Error
}

// GetTableSchemaRequest / GetTableSchemaResponse.
type GetTableSchemaRequest struct {
	TableName string
}

type GetTableSchemaResponse struct {
	Error  *Error
	Schema Schema
}

// TabletLocation describes one tablet's key range and replica set.
type TabletLocation struct {
	TabletID string
	StartKey string
	EndKey   string
	Replicas []ReplicaLocation
}

// ReplicaLocation is one replica's server address; the core consults
// only the first replica returned (SPEC_FULL.md Non-goals — no load
// balancing across replicas).
type ReplicaLocation struct {
	ServerAddress string
}

// GetTableLocationsRequest / GetTableLocationsResponse.
type GetTableLocationsRequest struct {
	TableName           string
	StartKey            string
	MaxReturnedLocations int32
}

type GetTableLocationsResponse struct {
	Error            *Error
	TabletLocations  []TabletLocation
}

// WriteOpKind enumerates the write operation one WriteOp carries.
type WriteOpKind int

const (
	WriteInsert WriteOpKind = iota
)

// WriteOp is one row-level operation inside a WriteBatchRequest.
type WriteOp struct {
	Kind WriteOpKind
	Row  Row
}

// WriteBatchRequest applies an ordered batch of row mutations to a
// single tablet.
type WriteBatchRequest struct {
	TabletID string
	Ops      []WriteOp
}

// WriteBatchResponse is a whole-batch accept/reject: the core does not
// retry or report per-row failures (SPEC_FULL.md "Supplemented RPC").
type WriteBatchResponse struct {
	Error *Error
}

// Row is an opaque row value; the core never interprets it beyond
// checking whether key columns are set (KeySet below).
type Row struct {
	Values map[string]any
	// KeyColumnsSet must name every column in the owning schema's
	// KeyColumns for the row to be considered key-set.
	KeyColumnsSet map[string]bool
}

// KeySet reports whether every key column named in keyColumns has been
// set on the row.
func (r Row) KeySet(keyColumns []string) bool {
	if len(keyColumns) == 0 {
		return false
	}
	for _, k := range keyColumns {
		if !r.KeyColumnsSet[k] {
			return false
		}
	}
	return true
}

// RangePredicate is an opaque conjunct predicate over a projected column.
type RangePredicate struct {
	Column string
	Lower  any
	Upper  any
}

// NewScanRequest opens a server-side cursor on a tablet.
type NewScanRequest struct {
	TabletID         string
	ProjectedColumns []string
	RangePredicates  []RangePredicate
	BatchSizeBytes   int
}

// ScanRequest is the scanner's "next request" message: either a fresh
// NewScanRequest (pre-open) or a ScannerID (post-open), per
// SPEC_FULL.md §4 Scanner data model.
type ScanRequest struct {
	NewScan        *NewScanRequest
	ScannerID      string
	BatchSizeBytes int
	CloseScanner   bool
}

// ScanResponse carries either inline data (HasData true, rows in Rows)
// or a server-assigned cursor id for subsequent pages.
type ScanResponse struct {
	Error        *Error
	ScannerID    string
	HasData      bool
	HasMoreRows  bool
	Rows         []Row
}
