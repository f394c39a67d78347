//go:build !mp && !shm

package substrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialCommIdentity(t *testing.T) {
	c := New()
	defer c.Close()

	assert.Equal(t, 0, c.Rank())
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, "serial", c.BackendName())
}

func TestSerialCollectivesAreIdentity(t *testing.T) {
	c := New()
	defer c.Close()

	src := []float64{1, 2, 3}
	dst := make([]float64, 3)

	c.AllSumDouble(src, dst)
	assert.Equal(t, src, dst)

	c.AllMaxDouble(src, dst)
	assert.Equal(t, src, dst)

	buf := c.SymmetricAlloc(3)
	copy(buf.Doubles(), src)
	c.Broadcast(buf, 0)
	assert.Equal(t, src, buf.Doubles())
}

func TestSerialGroupRejectsMultiRank(t *testing.T) {
	_, err := NewGroup(2)
	require.Error(t, err)
}

func TestSerialResourceLimitPanics(t *testing.T) {
	c := New(WithResource(NewResource(ResourceConfig{MaxBytes: 8})))
	defer c.Close()

	assert.Panics(t, func() {
		c.SymmetricAlloc(100)
	})
}
