// Package rpcfake provides in-memory fakes for rpc.Messenger,
// rpc.MasterService and rpc.TabletServerService so the core's unit
// tests can exercise Client/Table/Session/Scanner behavior without a
// real cluster (the wire services are out of scope, SPEC_FULL.md §1).
package rpcfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// Master is a minimal, in-memory master fake. Tests configure its
// behavior by mutating the exported fields/maps directly before
// exercising the client under test.
type Master struct {
	mu sync.Mutex

	Tables           map[string]*rpc.Schema
	CreateInProgress map[string]bool
	AlterInProgress  map[string]bool
	Locations        map[string][]rpc.TabletLocation

	// CreateTableErr, when set, is returned verbatim as an embedded
	// response error on every CreateTable call until it is cleared.
	CreateTableErr *rpc.Error
}

// NewMaster builds an empty fake master.
func NewMaster() *Master {
	return &Master{
		Tables:           map[string]*rpc.Schema{},
		CreateInProgress: map[string]bool{},
		AlterInProgress:  map[string]bool{},
		Locations:        map[string][]rpc.TabletLocation{},
	}
}

func (m *Master) CreateTable(_ context.Context, req *rpc.CreateTableRequest) (*rpc.CreateTableResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateTableErr != nil {
		return &rpc.CreateTableResponse{Error: m.CreateTableErr}, nil
	}
	if _, exists := m.Tables[req.Name]; exists {
		return &rpc.CreateTableResponse{Error: &rpc.Error{Message: "table already exists"}}, nil
	}
	schema := req.Schema
	m.Tables[req.Name] = &schema
	m.CreateInProgress[req.Name] = true
	return &rpc.CreateTableResponse{}, nil
}

func (m *Master) IsCreateTableDone(_ context.Context, req *rpc.IsCreateTableDoneRequest) (*rpc.IsCreateTableDoneResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tables[req.TableName]; !ok {
		return &rpc.IsCreateTableDoneResponse{Error: &rpc.Error{Message: "the table does not exist"}}, nil
	}
	done := !m.CreateInProgress[req.TableName]
	return &rpc.IsCreateTableDoneResponse{Done: done}, nil
}

// FinishCreate marks a table's creation as complete; tests call this to
// simulate the master converging on tablet assignment.
func (m *Master) FinishCreate(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateInProgress[table] = false
}

func (m *Master) AlterTable(_ context.Context, req *rpc.AlterTableRequest) (*rpc.AlterTableResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schema, ok := m.Tables[req.TableName]
	if !ok {
		return &rpc.AlterTableResponse{Error: &rpc.Error{Message: "the table does not exist"}}, nil
	}

	finalName := req.TableName
	if req.NewTableName != nil {
		finalName = *req.NewTableName
	}
	m.AlterInProgress[finalName] = true
	if finalName != req.TableName {
		delete(m.Tables, req.TableName)
		m.Tables[finalName] = schema
		if locs, ok := m.Locations[req.TableName]; ok {
			m.Locations[finalName] = locs
			delete(m.Locations, req.TableName)
		}
	}
	return &rpc.AlterTableResponse{}, nil
}

func (m *Master) IsAlterTableDone(_ context.Context, req *rpc.IsAlterTableDoneRequest) (*rpc.IsAlterTableDoneResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tables[req.TableName]; !ok {
		return &rpc.IsAlterTableDoneResponse{Error: &rpc.Error{Message: "the table does not exist"}}, nil
	}
	done := !m.AlterInProgress[req.TableName]
	return &rpc.IsAlterTableDoneResponse{Done: done}, nil
}

// FinishAlter marks a table's alter as complete.
func (m *Master) FinishAlter(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlterInProgress[table] = false
}

func (m *Master) DeleteTable(_ context.Context, req *rpc.DeleteTableRequest) (*rpc.DeleteTableResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tables[req.TableName]; !ok {
		return &rpc.DeleteTableResponse{Error: &rpc.Error{Message: "the table does not exist"}}, nil
	}
	delete(m.Tables, req.TableName)
	delete(m.Locations, req.TableName)
	return &rpc.DeleteTableResponse{}, nil
}

func (m *Master) GetTableSchema(_ context.Context, req *rpc.GetTableSchemaRequest) (*rpc.GetTableSchemaResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schema, ok := m.Tables[req.TableName]
	if !ok {
		return &rpc.GetTableSchemaResponse{Error: &rpc.Error{Message: "the table does not exist"}}, nil
	}
	return &rpc.GetTableSchemaResponse{Schema: *schema}, nil
}

func (m *Master) GetTableLocations(_ context.Context, req *rpc.GetTableLocationsRequest) (*rpc.GetTableLocationsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.MaxReturnedLocations == 0 {
		return &rpc.GetTableLocationsResponse{Error: &rpc.Error{Message: "max_returned_locations must be greater than 0"}}, nil
	}

	all, ok := m.Locations[req.TableName]
	if !ok {
		return &rpc.GetTableLocationsResponse{}, nil
	}

	var out []rpc.TabletLocation
	for _, loc := range all {
		if loc.EndKey != "" && req.StartKey >= loc.EndKey {
			continue
		}
		out = append(out, loc)
		if int32(len(out)) >= req.MaxReturnedLocations {
			break
		}
	}
	return &rpc.GetTableLocationsResponse{TabletLocations: out}, nil
}

// SetLocations registers the tablet locations reported for table.
func (m *Master) SetLocations(table string, locs []rpc.TabletLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locations[table] = locs
}

// TabletServer is a minimal, in-memory tablet-server fake serving
// canned scan responses keyed by tablet id.
type TabletServer struct {
	mu sync.Mutex

	// Pages, keyed by tablet id, lists the row pages every new scan on
	// that tablet serves in order: the opening Scan returns the first
	// page and each continuation Scan on its cursor the next one.
	Pages map[string][][]rpc.Row

	nextScannerID int
	cursors       map[string]*cursorState

	// WrittenBatches records every WriteBatch request this fake
	// accepted, in order, for test assertions.
	WrittenBatches []*rpc.WriteBatchRequest
	// WriteErr, when set, is returned as the embedded response error on
	// every subsequent WriteBatch/WriteBatchAsync call.
	WriteErr *rpc.Error
	// WriteInline makes WriteBatchAsync invoke done synchronously on the
	// calling goroutine instead of from a new one, exercising
	// SPEC_FULL.md §5 rule 1 (sessions must never call a batcher while
	// holding their own lock, because a flush may complete inline).
	WriteInline bool
}

type cursorState struct {
	tabletID string
	pages    [][]rpc.Row
	index    int
}

// NewTabletServer builds an empty fake tablet server.
func NewTabletServer() *TabletServer {
	return &TabletServer{
		Pages:   map[string][][]rpc.Row{},
		cursors: map[string]*cursorState{},
	}
}

func (t *TabletServer) Scan(_ context.Context, req *rpc.ScanRequest) (*rpc.ScanResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if req.CloseScanner {
		delete(t.cursors, req.ScannerID)
		return &rpc.ScanResponse{}, nil
	}

	if req.NewScan != nil {
		pages := t.Pages[req.NewScan.TabletID]
		if len(pages) == 0 {
			return &rpc.ScanResponse{HasData: false}, nil
		}
		if len(pages) == 1 {
			return &rpc.ScanResponse{HasData: true, HasMoreRows: false, Rows: pages[0]}, nil
		}
		t.nextScannerID++
		id := fmt.Sprintf("scanner-%d", t.nextScannerID)
		t.cursors[id] = &cursorState{tabletID: req.NewScan.TabletID, pages: pages, index: 1}
		return &rpc.ScanResponse{HasData: true, HasMoreRows: true, ScannerID: id, Rows: pages[0]}, nil
	}

	cur, ok := t.cursors[req.ScannerID]
	if !ok {
		return &rpc.ScanResponse{Error: &rpc.Error{Message: "scanner not found"}}, nil
	}
	if cur.index >= len(cur.pages) {
		delete(t.cursors, req.ScannerID)
		return &rpc.ScanResponse{HasMoreRows: false}, nil
	}
	rows := cur.pages[cur.index]
	cur.index++
	more := cur.index < len(cur.pages)
	if !more {
		delete(t.cursors, req.ScannerID)
	}
	return &rpc.ScanResponse{Rows: rows, HasMoreRows: more, ScannerID: req.ScannerID}, nil
}

func (t *TabletServer) ScanAsync(ctx context.Context, req *rpc.ScanRequest, done func(*rpc.ScanResponse, error)) {
	go func() {
		resp, err := t.Scan(ctx, req)
		done(resp, err)
	}()
}

func (t *TabletServer) WriteBatch(_ context.Context, req *rpc.WriteBatchRequest) (*rpc.WriteBatchResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.WriteErr != nil {
		return &rpc.WriteBatchResponse{Error: t.WriteErr}, nil
	}
	t.WrittenBatches = append(t.WrittenBatches, req)
	return &rpc.WriteBatchResponse{}, nil
}

func (t *TabletServer) WriteBatchAsync(ctx context.Context, req *rpc.WriteBatchRequest, done func(*rpc.WriteBatchResponse, error)) {
	if t.WriteInline {
		resp, err := t.WriteBatch(ctx, req)
		done(resp, err)
		return
	}
	go func() {
		resp, err := t.WriteBatch(ctx, req)
		done(resp, err)
	}()
}

// Resolver is a fake DNS resolver that returns a fixed address list per
// host:port key.
type Resolver struct {
	mu        sync.Mutex
	Addresses map[string][]string
}

// NewResolver builds a resolver that, absent a configured mapping,
// resolves any address to itself.
func NewResolver() *Resolver {
	return &Resolver{Addresses: map[string][]string{}}
}

func (r *Resolver) Resolve(_ context.Context, hostPort string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if addrs, ok := r.Addresses[hostPort]; ok {
		return addrs, nil
	}
	return []string{hostPort}, nil
}

// Messenger wires a fake Master/TabletServer pair behind the
// rpc.Messenger interface. TabletServers is keyed by resolved server
// address.
type Messenger struct {
	mu            sync.Mutex
	Master        *Master
	TabletServers map[string]*TabletServer
}

// NewMessenger builds a fake messenger around the given master, with no
// tablet servers registered yet (use AddTabletServer).
func NewMessenger(master *Master) *Messenger {
	return &Messenger{Master: master, TabletServers: map[string]*TabletServer{}}
}

// AddTabletServer registers ts to be dialed at address.
func (m *Messenger) AddTabletServer(address string, ts *TabletServer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TabletServers[address] = ts
}

func (m *Messenger) DialMaster(_ context.Context, _ string) (rpc.MasterService, error) {
	return m.Master, nil
}

func (m *Messenger) DialTabletServer(_ context.Context, address string) (rpc.TabletServerService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.TabletServers[address]
	if !ok {
		return nil, fmt.Errorf("no fake tablet server registered at %s", address)
	}
	return ts, nil
}
