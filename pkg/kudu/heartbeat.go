package kudu

import (
	"context"
	"sync"
	"time"

	"github.com/Jeffail/shutdown"
	"go.uber.org/zap"
)

// Heartbeater runs callback every period on its own goroutine until
// Stop. Reset suppresses the next scheduled firing and restarts the
// countdown from now (SPEC_FULL.md §4.6) — it never fires callback
// itself, it only postpones the next tick.
//
// Start/Stop/Reset are all safe for concurrent use. Stop blocks until
// any in-flight callback invocation has returned, mirroring the
// teacher's hard-stop join on its worker goroutine.
type Heartbeater struct {
	name     string
	period   time.Duration
	callback func(ctx context.Context) *Status
	log      *zap.Logger

	mu       sync.Mutex
	running  bool
	shutSig  *shutdown.Signaller
	resetCh  chan struct{}
}

// NewHeartbeater builds a Heartbeater that calls callback roughly every
// period once Start is called. callback's returned status, on failure, is
// logged but never propagated — the caller learns of heartbeat failures
// only through its own logs (SPEC_FULL.md §4.6).
func NewHeartbeater(name string, period time.Duration, callback func(ctx context.Context) *Status, log *zap.Logger) *Heartbeater {
	return &Heartbeater{name: name, period: period, callback: callback, log: log.With(zap.String("component", "heartbeater"), zap.String("heartbeater", name))}
}

// Start is idempotent: calling it while already running has no effect.
func (h *Heartbeater) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.shutSig = shutdown.NewSignaller()
	h.resetCh = make(chan struct{}, 1)

	go h.loop(h.shutSig, h.resetCh)
}

// Stop is idempotent: calling it while not running has no effect. It
// signals a hard stop and waits for the worker's current (or next)
// iteration to observe it and exit, so no callback is still in flight
// when Stop returns.
func (h *Heartbeater) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	sig := h.shutSig
	h.running = false
	h.mu.Unlock()

	sig.TriggerHardStop()
	<-sig.HasStoppedChan()
}

// Reset postpones the next firing by a full period, without invoking
// callback. Calling Reset while stopped has no effect.
func (h *Heartbeater) Reset() {
	h.mu.Lock()
	resetCh := h.resetCh
	running := h.running
	h.mu.Unlock()

	if !running {
		return
	}
	select {
	case resetCh <- struct{}{}:
	default:
	}
}

func (h *Heartbeater) loop(sig *shutdown.Signaller, resetCh chan struct{}) {
	defer sig.TriggerHasStopped()

	timer := time.NewTimer(h.period)
	defer timer.Stop()

	for {
		select {
		case <-sig.HardStopChan():
			return
		case <-resetCh:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(h.period)
		case <-timer.C:
			h.fire(sig)
			timer.Reset(h.period)
		}
	}
}

func (h *Heartbeater) fire(sig *shutdown.Signaller) {
	ctx, cancel := sig.HardStopCtx(context.Background())
	defer cancel()

	var status *Status
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("heartbeat callback panicked", zap.Any("panic", r))
			return
		}
		if status != nil {
			h.log.Warn("heartbeat callback reported a failure", zap.Error(status))
		}
	}()
	status = h.callback(ctx)
}
