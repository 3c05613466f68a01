// Package rpc captures the request/response contracts the core consumes
// from the master and tablet-server wire services. The services
// themselves are external collaborators (SPEC_FULL.md §1, §6) — this
// package only describes the shapes and the interfaces the core dials
// against, so that production code talks to real cluster components
// while tests inject fakes (see rpcfake).
package rpc

import "context"

// MasterService is the subset of the master's RPC surface the core
// calls directly.
type MasterService interface {
	CreateTable(ctx context.Context, req *CreateTableRequest) (*CreateTableResponse, error)
	IsCreateTableDone(ctx context.Context, req *IsCreateTableDoneRequest) (*IsCreateTableDoneResponse, error)
	AlterTable(ctx context.Context, req *AlterTableRequest) (*AlterTableResponse, error)
	IsAlterTableDone(ctx context.Context, req *IsAlterTableDoneRequest) (*IsAlterTableDoneResponse, error)
	DeleteTable(ctx context.Context, req *DeleteTableRequest) (*DeleteTableResponse, error)
	GetTableSchema(ctx context.Context, req *GetTableSchemaRequest) (*GetTableSchemaResponse, error)
	GetTableLocations(ctx context.Context, req *GetTableLocationsRequest) (*GetTableLocationsResponse, error)
}

// TabletServerService is the subset of a tablet server's RPC surface the
// core calls directly.
type TabletServerService interface {
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
	// ScanAsync mirrors Scan but returns immediately; done is invoked
	// exactly once from a transport-owned goroutine. Used for the
	// scanner's fire-and-forget Close dispatch (SPEC_FULL.md §5, §4.5).
	ScanAsync(ctx context.Context, req *ScanRequest, done func(*ScanResponse, error))

	// WriteBatch applies a batch of mutations to a tablet, whole-batch
	// accept/reject (SPEC_FULL.md's "Supplemented RPC" note — the core
	// does not retry individual mutation failures within a batch).
	WriteBatch(ctx context.Context, req *WriteBatchRequest) (*WriteBatchResponse, error)
	// WriteBatchAsync mirrors WriteBatch but returns immediately; done
	// is invoked exactly once, possibly inline on the calling
	// goroutine (SPEC_FULL.md §5 rule 1 depends on this).
	WriteBatchAsync(ctx context.Context, req *WriteBatchRequest, done func(*WriteBatchResponse, error))
}

// Resolver resolves a host:port address into one or more server
// addresses. The DNS resolver itself is out of scope; the core only
// needs this much of its contract (SPEC_FULL.md §1).
type Resolver interface {
	Resolve(ctx context.Context, hostPort string) ([]string, error)
}

// Messenger is the process-wide RPC transport. It dials proxies for the
// master and for tablet servers; the transport/wire framing underneath
// is out of scope.
type Messenger interface {
	DialMaster(ctx context.Context, address string) (MasterService, error)
	DialTabletServer(ctx context.Context, address string) (TabletServerService, error)
}
