package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/exactlab/diapasom/substrate"
)

// ErrMalformedRecord is the sentinel behind every line-parsing failure
// Load returns: a non-numeric field, a record with a different field
// count than the dataset's first line, or a blank line followed by more
// records.
var ErrMalformedRecord = errors.New("dataset: malformed record")

// Dataset is the slice of a whitespace-delimited, one-record-per-line
// dataset that belongs to one rank, plus the bookkeeping every rank needs
// to translate between global and local record indices.
type Dataset struct {
	Dimensions int
	BatchSize  int // global batch size, after the < ranks rewrite
	Rank       int
	Ranks      int
	Total      int // total records across every rank
	ValueMean  float64

	data []float64 // Local()*Dimensions, row-major
}

// Load reads every line of the stream src serves at path, keeps the
// records assigned to comm's rank by round-robin batch index, and
// computes ValueMean, the sum of every scalar value divided by the
// record count (not by the scalar count), with one AllSumDouble
// collective.
//
// batchSize is the requested batch size; if it is smaller than
// comm.Size(), every record is treated as belonging to a single batch
// (matching the convention that a too-small batch size means "one batch,
// not many").
func Load(ctx context.Context, comm substrate.Communicator, src Source, path string, batchSize int, opts ...Option) (*Dataset, error) {
	o := applyOptions(opts)

	r, err := src.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer r.Close()

	rank, ranks := comm.Rank(), comm.Size()

	infinite := batchSize < ranks
	effectiveBatch := batchSize
	if infinite {
		effectiveBatch = 1 << 30 // large enough that bidx never wraps during the scan
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		dims         int
		total        int
		bidx         int
		rankSum      float64
		values       []float64
		pendingBlank bool
	)

	for scanner.Scan() {
		raw := scanner.Text()
		if err := o.resource.AcquireIO(ctx, len(raw)); err != nil {
			return nil, fmt.Errorf("dataset: %s: %w", path, err)
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			pendingBlank = true
			continue
		}
		if pendingBlank {
			return nil, fmt.Errorf("%w: %s: line %d: blank line before end of file", ErrMalformedRecord, path, total+1)
		}
		fields := strings.Fields(line)
		if dims == 0 {
			dims = len(fields)
			if dims == 0 {
				return nil, fmt.Errorf("dataset: %s: empty first record", path)
			}
		} else if len(fields) != dims {
			return nil, fmt.Errorf("%w: %s: line %d has %d fields, want %d", ErrMalformedRecord, path, total+1, len(fields), dims)
		}

		if bidx%ranks == rank {
			for _, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: line %d: %v", ErrMalformedRecord, path, total+1, err)
				}
				values = append(values, v)
				rankSum += v
			}
		}

		total++
		if bidx < effectiveBatch-1 {
			bidx++
		} else {
			bidx = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	if total == 0 {
		return nil, fmt.Errorf("dataset: %s: no records", path)
	}

	storedBatch := batchSize
	if infinite {
		storedBatch = total
	}

	sumSrc := []float64{rankSum}
	sumDst := make([]float64, 1)
	comm.AllSumDouble(sumSrc, sumDst)

	return &Dataset{
		Dimensions: dims,
		BatchSize:  storedBatch,
		Rank:       rank,
		Ranks:      ranks,
		Total:      total,
		ValueMean:  sumDst[0] / float64(total),
		data:       values,
	}, nil
}

// Local returns the number of records assigned to this rank.
func (d *Dataset) Local() int {
	if d.Dimensions == 0 {
		return 0
	}
	return len(d.data) / d.Dimensions
}

// LocalRecord returns the idx-th record owned by this rank, 0 <= idx < Local().
func (d *Dataset) LocalRecord(idx int) []float64 {
	off := idx * d.Dimensions
	return d.data[off : off+d.Dimensions]
}

// GlobalToLocal converts a global record index into the rank that owns it
// and that rank's local index for it, following the same round-robin
// batch assignment Load used while reading.
func (d *Dataset) GlobalToLocal(gidx int) (rank, lidx int) {
	batch := gidx / d.BatchSize
	bidx := gidx - batch*d.BatchSize
	rank = bidx % d.Ranks
	rbatchsize := substrate.Distribute(d.BatchSize, rank, d.Ranks)
	lidx = batch*rbatchsize + bidx/d.Ranks
	return rank, lidx
}

// RankBatchSize returns how many of BatchSize's records this rank
// presents per batch.
func (d *Dataset) RankBatchSize() int {
	return substrate.Distribute(d.BatchSize, d.Rank, d.Ranks)
}

// Batches returns the number of batches the local records are split
// into: ceil(Total / BatchSize).
func (d *Dataset) Batches() int {
	return (d.Total + d.BatchSize - 1) / d.BatchSize
}
