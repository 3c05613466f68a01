package kudu

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// cachedTablet is the metadata cache's entry for one tablet, grounded
// on the teacher's registry.go map-behind-a-mutex shape.
type cachedTablet struct {
	mu        sync.Mutex
	tableName string
	tabletID  string
	replicas  []rpc.ReplicaLocation
}

// metadataClient resolves tablet ids to tablet-server proxies, per
// SPEC_FULL.md §4.3. It is process-wide from the Client's point of view
// (SPEC_FULL.md §5).
type metadataClient struct {
	client *Client
	log    *zap.Logger

	mu      sync.RWMutex
	tablets map[string]*cachedTablet
}

func newMetadataClient(c *Client) *metadataClient {
	return &metadataClient{
		client:  c,
		log:     c.log.With(zap.String("component", "metadata")),
		tablets: map[string]*cachedTablet{},
	}
}

func (m *metadataClient) entry(tableName, tabletID string) *cachedTablet {
	m.mu.RLock()
	e, ok := m.tablets[tabletID]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.tablets[tabletID]; ok {
		return e
	}
	e = &cachedTablet{tableName: tableName, tabletID: tabletID}
	m.tablets[tabletID] = e
	return e
}

// refresh re-fetches tabletID's replica set from the master, awaited
// synchronously via a one-shot synchronizer even though the lookup
// itself is a plain blocking call here (the synchronizer is what lets a
// future async transport swap in without changing this method's
// contract, per SPEC_FULL.md §9).
func (e *cachedTablet) refresh(ctx context.Context, c *Client) *Status {
	latch := newSynchronizer()
	go func() {
		resp, err := c.master.GetTableLocations(ctx, &rpc.GetTableLocationsRequest{
			TableName:            e.tableName,
			StartKey:             "",
			MaxReturnedLocations: 1,
		})
		if err != nil {
			latch.finish(Passthrough(err.Error()))
			return
		}
		if resp.Error != nil {
			latch.finish(Passthrough(resp.Error.Message))
			return
		}
		for _, loc := range resp.TabletLocations {
			if loc.TabletID == e.tabletID {
				e.mu.Lock()
				e.replicas = loc.Replicas
				e.mu.Unlock()
				latch.finish(nil)
				return
			}
		}
		latch.finish(nil)
	}()
	return latch.wait()
}

// getTabletProxy looks up tabletID in the cache, refreshes it, and
// dials the first replica's tablet server. It fails with NotFound if
// the refreshed tablet has no replicas (SPEC_FULL.md §4.3 — no load
// balancing across replicas, the first one is authoritative here).
func (m *metadataClient) getTabletProxy(ctx context.Context, tableName, tabletID string) (rpc.TabletServerService, *Status) {
	log := m.log.With(zap.String("table", tableName), zap.String("tablet_id", tabletID))
	e := m.entry(tableName, tabletID)

	if status := e.refresh(ctx, m.client); status != nil {
		log.Warn("tablet location refresh failed", zap.Error(status))
		return nil, status
	}

	e.mu.Lock()
	replicas := e.replicas
	e.mu.Unlock()

	if len(replicas) == 0 {
		return nil, NotFound("tablet %q has no replicas", tabletID)
	}

	proxy, err := m.client.messenger.DialTabletServer(ctx, replicas[0].ServerAddress)
	if err != nil {
		log.Warn("dialing tablet server failed", zap.String("address", replicas[0].ServerAddress), zap.Error(err))
		return nil, Passthrough(err.Error())
	}
	return proxy, nil
}
