//go:build mp

package substrate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPGroupBroadcastReachesEveryRank(t *testing.T) {
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
			buf := c.SymmetricAlloc(3)
			if c.Rank() == 2 {
				copy(buf.Doubles(), []float64{7, 8, 9})
			}
			c.Broadcast(buf, 2)
			got[r] = append([]float64(nil), buf.Doubles()...)
			c.Close()
		}(r)
	}
	wg.Wait()

	for r := 0; r < size; r++ {
		assert.Equal(t, []float64{7, 8, 9}, got[r], "rank %d", r)
	}
}

func TestMPGroupAllSumMatchesSerialSum(t *testing.T) {
	const size = 4
	comms, err := NewGroup(size)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float64, size)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			c := comms[r]
			src := []float64{float64(r), float64(r) * 2}
			dst := make([]float64, 2)
			c.AllSumDouble(src, dst)
			results[r] = dst
			c.Close()
		}(r)
	}
	wg.Wait()

	for r := 0; r < size; r++ {
		assert.Equal(t, []float64{6, 12}, results[r])
	}
}

func TestMPGroupAllMax(t *testing.T) {
	const size = 3
	comms, err := NewGroup(size)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float64, size)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			c := comms[r]
			src := []float64{float64(r - 1), float64(size - r)}
			dst := make([]float64, 2)
			c.AllMaxDouble(src, dst)
			results[r] = dst
			c.Close()
		}(r)
	}
	wg.Wait()

	for r := 0; r < size; r++ {
		assert.Equal(t, []float64{1, 3}, results[r])
	}
}
