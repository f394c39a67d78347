//go:build shm

package substrate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHMSymmetricAllocSharesOneArena(t *testing.T) {
	const size = 3
	comms, err := NewGroup(size)
	require.NoError(t, err)

	var wg sync.WaitGroup
	bufs := make([]Buffer, size)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			bufs[r] = comms[r].SymmetricAlloc(4)
		}(r)
	}
	wg.Wait()

	bufs[1].Doubles()[0] = 42
	assert.Equal(t, 42.0, bufs[0].Doubles()[0], "write from rank 1 must be visible through rank 0's view")
	assert.Equal(t, 42.0, bufs[2].Doubles()[0], "write from rank 1 must be visible through rank 2's view")

	for r := 0; r < size; r++ {
		comms[r].Close()
	}
}

func TestSHMGroupBroadcast(t *testing.T) {
	const size = 4
	comms, err := NewGroup(size)
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([][]float64, size)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			c := comms[r]
			buf := c.SymmetricAlloc(2)
			if c.Rank() == 0 {
				copy(buf.Doubles(), []float64{5, 6})
			}
			c.Broadcast(buf, 0)
			got[r] = append([]float64(nil), buf.Doubles()...)
			c.Close()
		}(r)
	}
	wg.Wait()

	for r := 0; r < size; r++ {
		assert.Equal(t, []float64{5, 6}, got[r], "rank %d", r)
	}
}
