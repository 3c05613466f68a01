package kudu

import "github.com/goradiap/incubator-kudu/pkg/kudu/rpc"

// Schema and ColumnSchema re-export the wire-level shapes verbatim; row
// and schema encoding is opaque to the core (SPEC_FULL.md §1).
type Schema = rpc.Schema
type ColumnSchema = rpc.ColumnSchema
type Row = rpc.Row
