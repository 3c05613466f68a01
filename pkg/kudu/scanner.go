package kudu

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// scanTimeout is the fixed RPC timeout for every scan call, wired here
// per SPEC_FULL.md §4.5 ("configurable later" — an acknowledged gap
// carried forward from spec.md rather than resolved, since nothing in
// spec.md names a knob for it).
const scanTimeout = 5 * time.Second

// Scanner is a streaming cursor over a tablet's rows. See SPEC_FULL.md
// §3 for its state machine: Fresh -> (Open) -> Streaming|Drained ->
// (Close) -> Closed.
type Scanner struct {
	table      *Table
	projection []string
	predicates []rpc.RangePredicate
	batchBytes int

	log *zap.Logger

	mu           sync.Mutex
	open         bool
	dataInOpen   bool
	scannerID    string
	lastResponse *rpc.ScanResponse
}

// NewScanner builds a Scanner over table, fresh and unopened.
func NewScanner(table *Table) *Scanner {
	return &Scanner{table: table, log: table.logger().With(zap.String("component", "scanner"))}
}

// SetProjection, SetBatchSizeBytes and AddConjunctPredicate are only
// legal before Open; violating that is a programming error (SPEC_FULL.md
// §4.5).
func (s *Scanner) SetProjection(columns []string) *Scanner {
	s.requireFresh()
	s.projection = columns
	return s
}

func (s *Scanner) SetBatchSizeBytes(n int) *Scanner {
	s.requireFresh()
	s.batchBytes = n
	return s
}

func (s *Scanner) AddConjunctPredicate(p rpc.RangePredicate) *Scanner {
	s.requireFresh()
	s.predicates = append(s.predicates, p)
	return s
}

func (s *Scanner) requireFresh() {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if open {
		panic("kudu: Scanner configuration methods must be called before Open")
	}
}

// Open requires !open; it embeds the table's tablet id in a new-scan
// request and issues Scan with a 5s timeout. On success it records
// whether data was returned inline and either stores the server's
// scanner id (more results pending) or leaves it empty (no rows
// matched, no server cursor allocated) — SPEC_FULL.md §4.5.
func (s *Scanner) Open(ctx context.Context) *Status {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		panic("kudu: Scanner.Open called twice")
	}
	s.mu.Unlock()

	proxy, status := s.table.tabletProxyFor(ctx)
	if status != nil {
		return status
	}

	callCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	req := &rpc.ScanRequest{
		NewScan: &rpc.NewScanRequest{
			TabletID:         s.table.tabletID,
			ProjectedColumns: s.projection,
			RangePredicates:  s.predicates,
			BatchSizeBytes:   s.batchBytes,
		},
	}
	resp, err := proxy.Scan(callCtx, req)
	if err != nil {
		return Passthrough(err.Error())
	}
	if resp.Error != nil {
		return Passthrough(resp.Error.Message)
	}

	s.mu.Lock()
	s.dataInOpen = resp.HasData
	s.lastResponse = resp
	if resp.HasMoreRows {
		s.scannerID = resp.ScannerID
	} else {
		s.scannerID = ""
	}
	s.open = true
	s.mu.Unlock()
	return nil
}

// HasMoreRows requires open; true iff data_in_open or the last response
// advertises more results.
func (s *Scanner) HasMoreRows() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		panic("kudu: HasMoreRows called before Open")
	}
	if s.dataInOpen {
		return true
	}
	return s.lastResponse != nil && s.lastResponse.HasMoreRows
}

// NextBatch requires open. If data_in_open is true it returns the rows
// already buffered from Open and clears the flag; otherwise it issues
// the next Scan reusing the stored scanner id. Rows are pointers into
// the last response's storage and remain valid only until the next call
// (SPEC_FULL.md §4.5).
func (s *Scanner) NextBatch(ctx context.Context) ([]Row, *Status) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		panic("kudu: NextBatch called before Open")
	}
	if s.dataInOpen {
		rows := s.lastResponse.Rows
		s.dataInOpen = false
		s.mu.Unlock()
		return rows, nil
	}
	scannerID := s.scannerID
	s.mu.Unlock()

	proxy, status := s.table.tabletProxyFor(ctx)
	if status != nil {
		return nil, status
	}

	callCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	resp, err := proxy.Scan(callCtx, &rpc.ScanRequest{ScannerID: scannerID, BatchSizeBytes: s.batchBytes})
	if err != nil {
		return nil, Passthrough(err.Error())
	}
	if resp.Error != nil {
		return nil, Passthrough(resp.Error.Message)
	}

	s.mu.Lock()
	s.lastResponse = resp
	if resp.HasMoreRows {
		s.scannerID = resp.ScannerID
	}
	s.mu.Unlock()

	return resp.Rows, nil
}

// Close is a no-op if not open. If no scanner id was ever assigned, it
// just marks the scanner closed. Otherwise it dispatches a detached,
// fire-and-forget close RPC against its own owned state (never the
// scanner's controller/response, since the scanner may be destroyed
// before the close completes — SPEC_FULL.md §4.5, §5 rule 2).
func (s *Scanner) Close() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	scannerID := s.scannerID
	table := s.table
	log := s.log
	s.scannerID = ""
	s.lastResponse = nil
	s.open = false
	s.mu.Unlock()

	if scannerID == "" {
		return
	}

	dispatchDetachedClose(table, scannerID, log)
}

// dispatchDetachedClose fires the close RPC from detached state owned
// only by this call, so it outlives a destroyed Scanner safely.
func dispatchDetachedClose(table *Table, scannerID string, log *zap.Logger) {
	log = log.With(zap.String("scanner_id", scannerID))

	proxy, status := table.tabletProxyFor(context.Background())
	if status != nil {
		log.Warn("scanner close: could not reach tablet server", zap.Error(status))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	req := &rpc.ScanRequest{ScannerID: scannerID, CloseScanner: true, BatchSizeBytes: 0}
	proxy.ScanAsync(ctx, req, func(resp *rpc.ScanResponse, err error) {
		defer cancel()
		switch {
		case err != nil:
			log.Warn("scanner close RPC failed", zap.Error(err))
		case resp.Error != nil:
			log.Warn("scanner close RPC returned an error", zap.String("error", resp.Error.Message))
		}
	})
}
