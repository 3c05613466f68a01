package kudu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSynchronizer_WaitBlocksUntilFinish(t *testing.T) {
	s := newSynchronizer()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.finish(InvalidArgument("boom"))
	}()

	st := s.wait()
	assert.Equal(t, CodeInvalidArgument, st.Code())
}

func TestSynchronizer_FinishOnlyAppliesOnce(t *testing.T) {
	s := newSynchronizer()
	s.finish(nil)
	s.finish(InvalidArgument("ignored"))
	assert.Nil(t, s.wait())
}
