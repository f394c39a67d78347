package fraction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exactlab/diapasom/lattice"
	"github.com/exactlab/diapasom/substrate"
)

func TestAccumulateZeroRadiusHitsOnlyBMU(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	w := lattice.New(3, 3, 2)
	f := New(comm, 3, 3, 2)
	f.Init()

	f.Accumulate(w, []float64{1, 1}, 1, 1, 0)

	assert.Equal(t, 1.0, f.denominator.Doubles()[0])
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			idx := row*3 + col
			num := f.numerator.Doubles()[idx*2 : idx*2+2]
			if row == 1 && col == 1 {
				assert.Equal(t, []float64{1, 1}, num)
			} else {
				assert.Equal(t, []float64{0, 0}, num, "row %d col %d", row, col)
			}
		}
	}
}

func TestAccumulateWeightsNeighborsByGaussian(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	w := lattice.New(3, 3, 1)
	f := New(comm, 3, 3, 1)
	f.Init()

	f.Accumulate(w, []float64{2}, 1, 1, 1)

	den := f.denominator.Doubles()[0]
	expectedCenter := 1.0
	expectedNeighbor := math.Exp(-1.0 / 2.0)
	expectedCorner := math.Exp(-2.0 / 2.0)

	assert.InDelta(t, expectedCenter+4*expectedNeighbor+4*expectedCorner, den, 1e-9)
}

func TestCommitAppliesUpdateAndReturnsDiff(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	w := lattice.New(1, 1, 1)
	w.Data[0] = 5
	f := New(comm, 1, 1, 1)
	f.Init()

	f.numerator.Doubles()[0] = 3
	f.denominator.Doubles()[0] = 2

	diff := f.Commit(w)

	assert.Equal(t, 6.5, w.Data[0])
	assert.Equal(t, 1.5, diff)
}

func TestCommitWithZeroDenominatorLeavesWeightsUnchanged(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	w := lattice.New(1, 1, 1)
	w.Data[0] = 5
	f := New(comm, 1, 1, 1)
	f.Init()

	diff := f.Commit(w)

	assert.Equal(t, 5.0, w.Data[0])
	assert.Equal(t, 0.0, diff)
}

func TestInitClearsAccumulator(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	f := New(comm, 2, 2, 1)
	f.numerator.Doubles()[0] = 7
	f.denominator.Doubles()[0] = 9

	f.Init()

	require.Equal(t, 0.0, f.numerator.Doubles()[0])
	require.Equal(t, 0.0, f.denominator.Doubles()[0])
}

func TestReduceOnSingleRankIsIdentity(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	f := New(comm, 1, 1, 1)
	f.Init()
	f.numerator.Doubles()[0] = 4
	f.denominator.Doubles()[0] = 2

	f.Reduce(comm)

	assert.Equal(t, 4.0, f.numerator.Doubles()[0])
	assert.Equal(t, 2.0, f.denominator.Doubles()[0])
}
