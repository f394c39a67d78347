package substrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributeEvenSplit(t *testing.T) {
	for r := 0; r < 4; r++ {
		assert.Equal(t, 25, Distribute(100, r, 4))
	}
}

func TestDistributeRemainderGoesToLowRanks(t *testing.T) {
	assert.Equal(t, 3, Distribute(10, 0, 4))
	assert.Equal(t, 3, Distribute(10, 1, 4))
	assert.Equal(t, 2, Distribute(10, 2, 4))
	assert.Equal(t, 2, Distribute(10, 3, 4))
}

func TestDistributeSumsToTotal(t *testing.T) {
	total, size := 107, 6
	sum := 0
	for r := 0; r < size; r++ {
		sum += Distribute(total, r, size)
	}
	assert.Equal(t, total, sum)
}

func TestDistributeSingleRankGetsEverything(t *testing.T) {
	assert.Equal(t, 42, Distribute(42, 0, 1))
}
