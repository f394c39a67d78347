package dataset

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exactlab/diapasom/substrate"
)

type stringSource string

func (s stringSource) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func TestLoadSingleRankMeanDividesByRecordCountNotByScalarCount(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1 3\n5 7\n")
	ds, err := Load(context.Background(), comm, src, "mem", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Dimensions)
	assert.Equal(t, 2, ds.Total)
	assert.InDelta(t, (1.0+3.0+5.0+7.0)/2.0, ds.ValueMean, 1e-9)
}

func TestLoadSmallBatchIsRewrittenToOneBatch(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1\n2\n3\n4\n")
	ds, err := Load(context.Background(), comm, src, "mem", 0)
	require.NoError(t, err)

	assert.Equal(t, ds.Total, ds.BatchSize)
	assert.Equal(t, 1, ds.Batches())
}

func TestGlobalToLocalInvertsRoundRobinAssignment(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1\n2\n3\n4\n5\n6\n")
	ds, err := Load(context.Background(), comm, src, "mem", 3)
	require.NoError(t, err)

	for gidx := 0; gidx < ds.Total; gidx++ {
		rank, lidx := ds.GlobalToLocal(gidx)
		assert.Equal(t, 0, rank, "single-rank dataset: every record belongs to rank 0")
		assert.True(t, lidx < ds.Local())
	}
}

func TestLoadRejectsRaggedRecords(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1 2\n3\n")
	_, err := Load(context.Background(), comm, src, "mem", 1)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyDataset(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("")
	_, err := Load(context.Background(), comm, src, "mem", 1)
	assert.Error(t, err)
}

func TestLoadRejectsBlankLineInMiddle(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1\n2\n\n3\n")
	_, err := Load(context.Background(), comm, src, "mem", 1)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLoadTreatsTrailingBlankLinesAsEOF(t *testing.T) {
	comm := substrate.New()
	defer comm.Close()

	src := stringSource("1\n2\n3\n\n\n")
	ds, err := Load(context.Background(), comm, src, "mem", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Total)
}
