package rpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// TransientRetries bounds how many times Call retries a single RPC after
// a transport-level (not embedded-server) failure, before giving up and
// returning the last transport error to the caller.
const TransientRetries = 2

// Call invokes fn with a context bounded by deadline, retrying transient
// network failures (errors implementing net.Error, such as connection
// refused/reset or network timeouts) a bounded
// number of times. Embedded server errors inside a successful response
// are not retried here — that is the caller's concern, and for
// completion polling it is the concern of internal/retry instead
// (SPEC_FULL.md §5).
func Call[T any](ctx context.Context, log *zap.Logger, deadline time.Time, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var result T
	err := retry.Do(
		func() error {
			var innerErr error
			result, innerErr = fn(callCtx)
			return innerErr
		},
		retry.Attempts(TransientRetries+1),
		retry.Delay(5*time.Millisecond),
		retry.MaxDelay(50*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(callCtx),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			if log != nil {
				log.Debug("retrying transient RPC failure",
					zap.Uint("attempt", n+1),
					zap.Error(err))
			}
		}),
		retry.LastErrorOnly(true),
	)
	return result, err
}

// isTransient reports whether err looks like a transport hiccup worth
// retrying rather than a definitive failure or an embedded server error
// (embedded errors arrive as a successful RPC with a non-nil Error
// field, not as a Go error, so they never reach here).
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
