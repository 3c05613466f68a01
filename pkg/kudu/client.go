package kudu

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goradiap/incubator-kudu/internal/transport"
	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// Client is the shared, process-wide handle every Table and Session is
// built from. It is safe for concurrent use by any number of holders.
type Client struct {
	opts ClientOptions

	messenger rpc.Messenger
	resolver  rpc.Resolver
	master    rpc.MasterService

	metadata *metadataClient

	log *zap.Logger

	initted atomic.Bool
}

// NewClient validates opts, resolves the master address, and returns an
// initialized Client ready for OpenTable and session creation.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if status := opts.validate(); status != nil {
		return nil, status
	}
	opts = opts.withDefaults()

	resolver := opts.Resolver
	if resolver == nil {
		resolver = transport.DefaultResolver{}
	}
	messenger := opts.Messenger
	if messenger == nil {
		messenger = transport.DefaultMessenger{}
	}

	addrs, err := resolver.Resolve(ctx, opts.MasterAddress)
	if err != nil {
		return nil, Passthrough(err.Error())
	}
	if len(addrs) == 0 {
		return nil, NotFound("master address %q resolved to no addresses", opts.MasterAddress)
	}
	if len(addrs) > 1 {
		opts.Logger.Warn("master address resolved to multiple addresses; using the first",
			zap.String("master_address", opts.MasterAddress),
			zap.Strings("resolved", addrs))
	}

	master, err := messenger.DialMaster(ctx, addrs[0])
	if err != nil {
		return nil, Passthrough(err.Error())
	}

	c := &Client{
		opts:      opts,
		messenger: messenger,
		resolver:  resolver,
		master:    master,
		log:       opts.Logger,
	}
	c.metadata = newMetadataClient(c)
	c.initted.Store(true)
	return c, nil
}

// adminTimeout returns the configured per-call timeout for single-shot
// admin RPCs.
func (c *Client) adminTimeout() time.Duration {
	return c.opts.DefaultAdminTimeout
}

// adminLog returns the client logger scoped to the admin façade
// (CreateTable, AlterTable, DeleteTable, GetTableSchema,
// GetTableLocations).
func (c *Client) adminLog() *zap.Logger {
	return c.log.With(zap.String("component", "admin"))
}

// requireInitted panics if the client was never successfully
// initialized. Per SPEC_FULL.md §3, violating this is a programming
// error, not a runtime Status.
func (c *Client) requireInitted() {
	if !c.initted.Load() {
		panic("kudu: Client used before initialization")
	}
}
