package kudu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCollector_AddAndDrain(t *testing.T) {
	c := NewErrorCollector(2)

	c.Add(OpError{FailedOp: "a", Status: InvalidArgument("1")})
	c.Add(OpError{FailedOp: "b", Status: InvalidArgument("2")})
	assert.Equal(t, 2, c.CountErrors())

	errs, overflowed := c.Drain()
	require.Len(t, errs, 2)
	assert.False(t, overflowed)
	assert.Equal(t, "a", errs[0].FailedOp)
	assert.Equal(t, "b", errs[1].FailedOp)
	assert.Equal(t, 0, c.CountErrors())
}

func TestErrorCollector_DropsOldestAtCapacity(t *testing.T) {
	c := NewErrorCollector(2)
	c.Add(OpError{FailedOp: "a"})
	c.Add(OpError{FailedOp: "b"})
	c.Add(OpError{FailedOp: "c"})

	errs, overflowed := c.Drain()
	require.Len(t, errs, 2)
	assert.True(t, overflowed)
	assert.Equal(t, "b", errs[0].FailedOp)
	assert.Equal(t, "c", errs[1].FailedOp)
}

func TestErrorCollector_DefaultCapacity(t *testing.T) {
	c := NewErrorCollector(0)
	assert.Equal(t, defaultErrorCollectorCapacity, c.capacity)
}

func TestErrorCollector_DrainEmptyReportsNoOverflow(t *testing.T) {
	c := NewErrorCollector(2)
	errs, overflowed := c.Drain()
	assert.Nil(t, errs)
	assert.False(t, overflowed)
}
