//go:build mp

package dataset

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exactlab/diapasom/substrate"
)

func TestLoadPartitionsExactlyOnceAcrossRanks(t *testing.T) {
	const size = 4
	comms, err := substrate.NewGroup(size)
	require.NoError(t, err)

	src := stringSource("1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n")

	var wg sync.WaitGroup
	seen := make([][]float64, size)
	means := make([]float64, size)
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			ds, err := Load(context.Background(), comms[r], src, "mem", size)
			require.NoError(t, err)
			for i := 0; i < ds.Local(); i++ {
				seen[r] = append(seen[r], ds.LocalRecord(i)[0])
			}
			means[r] = ds.ValueMean
			comms[r].Close()
		}(r)
	}
	wg.Wait()

	total := 0
	union := map[float64]bool{}
	for r := 0; r < size; r++ {
		total += len(seen[r])
		for _, v := range seen[r] {
			assert.False(t, union[v], "value %v assigned to more than one rank", v)
			union[v] = true
		}
	}
	assert.Equal(t, 10, total)

	for r := 1; r < size; r++ {
		assert.InDelta(t, means[0], means[r], 1e-9, "every rank must compute the same global mean")
	}
	assert.InDelta(t, 5.5, means[0], 1e-9)
}
