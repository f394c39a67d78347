// Package fraction implements the batch fraction accumulator: the
// numerator/denominator pair a training batch accumulates neighborhood-
// weighted contributions into before committing them onto the weight
// lattice in one shot.
package fraction

import (
	"math"

	"github.com/exactlab/diapasom/lattice"
	"github.com/exactlab/diapasom/substrate"
)

// Fraction accumulates, across every record presented in a batch, a
// numerator (one delta vector per lattice cell) and a single scalar
// denominator shared by every cell. Both halves live in symmetric
// memory so Reduce can sum them across every rank with one collective
// each.
type Fraction struct {
	rows, cols, dims int

	numerator substrate.Buffer
	numScratch substrate.Buffer
	denominator substrate.Buffer
	denScratch  substrate.Buffer
}

// New allocates a Fraction sized to match a rows x cols x dims lattice,
// using comm's symmetric memory.
func New(comm substrate.Communicator, rows, cols, dims int) *Fraction {
	return &Fraction{
		rows: rows, cols: cols, dims: dims,
		numerator:   comm.SymmetricAlloc(rows * cols * dims),
		numScratch:  comm.SymmetricAlloc(rows * cols * dims),
		denominator: comm.SymmetricAlloc(1),
		denScratch:  comm.SymmetricAlloc(1),
	}
}

// Init zeroes the accumulator before a batch's records are presented.
func (f *Fraction) Init() {
	nd := f.numerator.Doubles()
	for i := range nd {
		nd[i] = 0
	}
	f.denominator.Doubles()[0] = 0
}

// Accumulate folds one record's contribution into the cells within
// radius of its best-matching unit (brow, bcol). radius == 0 degenerates
// to weight 1 on the BMU cell alone, rather than the 0/0 that a literal
// Gaussian kernel would produce.
func (f *Fraction) Accumulate(weights *lattice.Weights, record []float64, brow, bcol int, radius float64) {
	share := int(radius)

	r1 := brow - share
	if share > brow {
		r1 = 0
	}
	c1 := bcol - share
	if share > bcol {
		c1 = 0
	}
	r2 := min(brow+share+1, f.rows)
	c2 := min(bcol+share+1, f.cols)

	num := f.numerator.Doubles()
	den := f.denominator.Doubles()

	for row := r1; row < r2; row++ {
		for col := c1; col < c2; col++ {
			idx := row*f.cols + col

			var weight float64
			if radius == 0 {
				weight = 1
			} else {
				dr := float64(row - brow)
				dc := float64(col - bcol)
				weight = math.Exp(-(dr*dr + dc*dc) / (2 * radius))
			}

			den[0] += weight

			entry := weights.EntryAt(idx)
			numOff := idx * f.dims
			for d := 0; d < f.dims; d++ {
				num[numOff+d] += weight * (record[d] - entry[d])
			}
		}
	}
}

// Reduce sums this Fraction's numerator and denominator across every
// rank in comm's group, leaving the totals visible to every rank.
func (f *Fraction) Reduce(comm substrate.Communicator) {
	comm.AllSumDouble(f.numerator.Doubles(), f.numScratch.Doubles())
	copy(f.numerator.Doubles(), f.numScratch.Doubles())

	comm.AllSumDouble(f.denominator.Doubles(), f.denScratch.Doubles())
	copy(f.denominator.Doubles(), f.denScratch.Doubles())
}

// Commit applies the reduced fraction onto weights in place, returning
// the sum of absolute per-element updates. A zero denominator (no record
// fell within radius of any cell across the whole batch) leaves weights
// untouched and returns zero, rather than propagating a 0/0 update.
func (f *Fraction) Commit(weights *lattice.Weights) float64 {
	denominator := f.denominator.Doubles()[0]
	if denominator == 0 {
		return 0
	}

	num := f.numerator.Doubles()
	diff := 0.0
	for i, w := range weights.Data {
		update := num[i] / denominator
		weights.Data[i] = w + update
		diff += math.Abs(update)
	}
	return diff
}

// Free releases the symmetric buffers backing this Fraction.
func (f *Fraction) Free() {
	f.numerator.Free()
	f.numScratch.Free()
	f.denominator.Free()
	f.denScratch.Free()
}
