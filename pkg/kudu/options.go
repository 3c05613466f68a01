package kudu

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goradiap/incubator-kudu/pkg/kudu/rpc"
)

// defaultAdminTimeout is the timeout applied to single-shot admin RPCs
// when ClientOptions.DefaultAdminTimeout is left zero.
const defaultAdminTimeout = 5 * time.Second

// ClientOptions configures a Client. MasterAddress is the only required
// field; Messenger and Logger are built internally when left nil.
type ClientOptions struct {
	// MasterAddress is a host:port string naming the master.
	MasterAddress string

	// DefaultAdminTimeout bounds single-shot admin RPCs (not the
	// completion-poll deadlines, which are fixed per call — see
	// SPEC_FULL.md §4.2). Defaults to 5s.
	DefaultAdminTimeout time.Duration

	// Messenger is the RPC transport. Built internally when nil; tests
	// inject an rpcfake.Messenger here.
	Messenger rpc.Messenger

	// Resolver resolves MasterAddress to one or more concrete
	// addresses. Built internally when nil.
	Resolver rpc.Resolver

	// Logger receives structured logs from every component. Defaults to
	// a production zap.Logger when nil.
	Logger *zap.Logger
}

func (o ClientOptions) validate() *Status {
	if o.MasterAddress == "" {
		return InvalidArgument("master_address is required")
	}
	return nil
}

func (o ClientOptions) withDefaults() ClientOptions {
	out := o
	if out.DefaultAdminTimeout <= 0 {
		out.DefaultAdminTimeout = defaultAdminTimeout
	}
	if out.Logger == nil {
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err := logCfg.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		out.Logger = logger
	}
	return out
}
