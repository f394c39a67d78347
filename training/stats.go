package training

import "github.com/RoaringBitmap/roaring/v2"

// Stats tracks, over the course of a training run, which lattice cells
// were ever selected as a best-matching unit. It is diagnostic only: a
// lattice with many cells that never win a BMU competition may be larger
// than the dataset warrants.
type Stats struct {
	touched *roaring.Bitmap
	cells   int
}

// NewStats constructs a Stats tracker for a lattice with the given
// number of cells (rows*cols).
func NewStats(cells int) *Stats {
	return &Stats{touched: roaring.New(), cells: cells}
}

// Touch records that the cell at flat index idx (row*cols+col) won a BMU
// competition.
func (s *Stats) Touch(idx int) {
	s.touched.Add(uint32(idx))
}

// TouchedCells returns how many distinct cells have ever been a BMU.
func (s *Stats) TouchedCells() int {
	return int(s.touched.GetCardinality())
}

// CoverageRatio returns TouchedCells() / cells, in [0, 1].
func (s *Stats) CoverageRatio() float64 {
	if s.cells == 0 {
		return 0
	}
	return float64(s.TouchedCells()) / float64(s.cells)
}
