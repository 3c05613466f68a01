// Package retry implements the deadline-bounded polling loop shared by every
// long-running administrative call (table create/alter completion).
package retry

import (
	"time"

	"go.uber.org/zap"
)

// Status is the minimal result shape a retried function reports back. The
// core's own *Status satisfies it directly; retry never inspects the
// underlying type beyond Error().
type Status interface {
	error
}

// Func is polled by Do until it reports retry=false or the deadline
// passes. deadline is absolute; f receives it so it can bound its own
// single attempt (e.g. an RPC timeout derived from the remaining budget).
type Func func(deadline time.Time) (status Status, retry bool)

const (
	initialWait   = time.Millisecond
	backoffFactor = 5
	backoffDiv    = 4
)

// TimedOutError is returned once the deadline elapses without a final
// status from f. It carries the caller-supplied timeoutMsg verbatim.
type TimedOutError struct {
	Msg string
}

func (e *TimedOutError) Error() string { return e.Msg }

// Do polls f until it returns retry=false, or until deadline passes, in
// which case a *TimedOutError wrapping timeoutMsg is returned instead of
// f's last status. retryMsg is logged alongside each retry attempt.
//
// If deadline is already in the past when Do is entered, f is never
// invoked and a *TimedOutError is returned immediately.
func Do(log *zap.Logger, deadline time.Time, retryMsg, timeoutMsg string, f Func) Status {
	if log != nil {
		log = log.With(zap.String("component", "retry"))
	}

	now := time.Now()
	if !now.Before(deadline) {
		return &TimedOutError{Msg: timeoutMsg}
	}

	wait := initialWait
	for {
		attemptStart := time.Now()
		status, shouldRetry := f(deadline)
		if !shouldRetry {
			return status
		}

		attemptDuration := time.Since(attemptStart)

		if log != nil {
			log.Debug(retryMsg, zap.Error(status), zap.Duration("wait", wait))
		}

		now = time.Now()
		if !now.Before(deadline) {
			return &TimedOutError{Msg: timeoutMsg}
		}

		remaining := deadline.Sub(now)
		grown := wait * backoffFactor / backoffDiv
		wait = grown
		if remaining-attemptDuration < wait {
			wait = remaining - attemptDuration
		}

		if wait > 0 {
			time.Sleep(wait)
		}

		if !time.Now().Before(deadline) {
			return &TimedOutError{Msg: timeoutMsg}
		}
	}
}
