package kudu

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHeartbeater_FiresPeriodically(t *testing.T) {
	var fires atomic.Int32
	h := NewHeartbeater("test", 20*time.Millisecond, func(context.Context) *Status {
		fires.Add(1)
		return nil
	}, zap.NewNop())

	h.Start()
	defer h.Stop()

	assert.Eventually(t, func() bool { return fires.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestHeartbeater_ResetSuppressesNextFiring(t *testing.T) {
	var fires atomic.Int32
	h := NewHeartbeater("test", 40*time.Millisecond, func(context.Context) *Status {
		fires.Add(1)
		return nil
	}, zap.NewNop())

	h.Start()
	defer h.Stop()

	for i := 0; i < 5; i++ {
		time.Sleep(15 * time.Millisecond)
		h.Reset()
	}
	assert.Equal(t, int32(0), fires.Load())
}

func TestHeartbeater_StartIsIdempotent(t *testing.T) {
	h := NewHeartbeater("test", time.Hour, func(context.Context) *Status { return nil }, zap.NewNop())
	h.Start()
	h.Start()
	h.Stop()
}

func TestHeartbeater_StopIsIdempotent(t *testing.T) {
	h := NewHeartbeater("test", time.Hour, func(context.Context) *Status { return nil }, zap.NewNop())
	h.Start()
	h.Stop()
	h.Stop()
}

func TestHeartbeater_ResetWhileStoppedIsNoOp(t *testing.T) {
	h := NewHeartbeater("test", time.Hour, func(context.Context) *Status { return nil }, zap.NewNop())
	assert.NotPanics(t, h.Reset)
}

func TestHeartbeater_StopJoinsInFlightCallback(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	h := NewHeartbeater("test", 5*time.Millisecond, func(context.Context) *Status {
		close(started)
		<-proceed
		return nil
	}, zap.NewNop())

	h.Start()
	<-started

	stopped := make(chan struct{})
	go func() {
		h.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight callback finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(proceed)
	<-stopped
}

// TestHeartbeater_FailureStatusIsLogged covers SPEC_FULL.md §4.6: a
// callback's returned failure status is logged, never propagated to Start
// or Reset.
func TestHeartbeater_FailureStatusIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	fired := make(chan struct{})
	h := NewHeartbeater("test", 10*time.Millisecond, func(context.Context) *Status {
		defer close(fired)
		return TimedOut("master unreachable")
	}, log)

	h.Start()
	defer h.Stop()
	<-fired

	require.Eventually(t, func() bool { return logs.Len() > 0 }, time.Second, 5*time.Millisecond)
	entry := logs.All()[0]
	assert.Equal(t, "heartbeat callback reported a failure", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "master unreachable")
}
