// Package transport provides the default Resolver and Messenger a
// Client builds internally when ClientOptions leaves them nil. The
// wire protocol spoken to a real master or tablet server is explicitly
// out of scope for the core (SPEC_FULL.md §1): this package supplies
// the DNS-resolution half for real, via the standard library, and a
// Messenger stub that fails clearly rather than guessing at an
// unspecified wire format. Production deployments that need real
// cluster connectivity inject their own rpc.Messenger through
// ClientOptions.Messenger.
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// DefaultResolver resolves host:port strings via the standard library's
// DNS resolver.
type DefaultResolver struct{}

var _ rpc.Resolver = DefaultResolver{}

func (DefaultResolver) Resolve(ctx context.Context, hostPort string) ([]string, error) {
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid address %q: %w", hostPort, err)
	}
	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("transport: resolving %q: %w", hostPort, err)
	}
	out := make([]string, len(ips))
	for i, ip := range ips {
		out[i] = net.JoinHostPort(ip, port)
	}
	return out, nil
}

// DefaultMessenger is the Messenger a Client falls back to when none is
// injected. Its wire protocol is unspecified (out of scope), so every
// dial fails with a clear, typed error instead of silently talking a
// made-up protocol to a real cluster.
type DefaultMessenger struct{}

var _ rpc.Messenger = DefaultMessenger{}

// ErrNoTransport is returned by DefaultMessenger's Dial methods.
var ErrNoTransport = fmt.Errorf("transport: no Messenger configured; inject one via ClientOptions.Messenger")

func (DefaultMessenger) DialMaster(context.Context, string) (rpc.MasterService, error) {
	return nil, ErrNoTransport
}

func (DefaultMessenger) DialTabletServer(context.Context, string) (rpc.TabletServerService, error) {
	return nil, ErrNoTransport
}
