package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_TimesOutWhenAlwaysRetrying(t *testing.T) {
	const budget = 60 * time.Millisecond
	deadline := time.Now().Add(budget)

	calls := 0
	start := time.Now()
	status := Do(nil, deadline, "still waiting", "gave up waiting", func(time.Time) (Status, bool) {
		calls++
		return errors.New("not done yet"), true
	})
	elapsed := time.Since(start)

	var timedOut *TimedOutError
	require.ErrorAs(t, status, &timedOut)
	assert.Equal(t, "gave up waiting", timedOut.Msg)
	assert.GreaterOrEqual(t, elapsed, budget)
	assert.Greater(t, calls, 0)
}

func TestDo_NeverInvokesPastDeadline(t *testing.T) {
	deadline := time.Now().Add(-time.Second)

	called := false
	status := Do(nil, deadline, "retry", "timeout", func(time.Time) (Status, bool) {
		called = true
		return nil, true
	})

	assert.False(t, called)
	var timedOut *TimedOutError
	require.ErrorAs(t, status, &timedOut)
}

func TestDo_ShortCircuitsOnNoRetry(t *testing.T) {
	deadline := time.Now().Add(time.Second)
	wantErr := errors.New("definitely done")

	calls := 0
	status := Do(nil, deadline, "retry", "timeout", func(time.Time) (Status, bool) {
		calls++
		if calls == 3 {
			return wantErr, false
		}
		return errors.New("retry me"), true
	})

	assert.Equal(t, 3, calls)
	assert.Same(t, Status(wantErr), status)
}
