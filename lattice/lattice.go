// Package lattice holds the weight grid a training run adjusts: a
// Rows x Cols grid of Dims-dimensional weight vectors, stored row-major
// in one contiguous backing array.
package lattice

import "fmt"

// Weights is a Rows x Cols grid of Dims-dimensional vectors, stored
// row-major: the vector at (row, col) occupies Data[Offset(row,col):
// Offset(row,col)+Dims].
type Weights struct {
	Rows, Cols, Dims int
	Data             []float64
}

// New allocates a zeroed Weights grid.
func New(rows, cols, dims int) *Weights {
	return &Weights{
		Rows: rows,
		Cols: cols,
		Dims: dims,
		Data: make([]float64, rows*cols*dims),
	}
}

// Offset returns the index into Data where the vector at (row, col) begins.
func (w *Weights) Offset(row, col int) int {
	return (row*w.Cols + col) * w.Dims
}

// Index returns the flat cell index row*Cols+col, the key used by cell
// diagnostics (training.Stats).
func (w *Weights) Index(row, col int) int {
	return row*w.Cols + col
}

// Entry returns the vector at (row, col) as a slice view into Data:
// mutating it mutates the grid.
func (w *Weights) Entry(row, col int) []float64 {
	off := w.Offset(row, col)
	return w.Data[off : off+w.Dims]
}

// EntryAt returns the vector at flat cell index idx (as produced by Index).
func (w *Weights) EntryAt(idx int) []float64 {
	off := idx * w.Dims
	return w.Data[off : off+w.Dims]
}

// Cells returns the total number of cells, Rows*Cols.
func (w *Weights) Cells() int {
	return w.Rows * w.Cols
}

// Swap exchanges the backing storage of two grids of identical shape,
// without copying any element. Panics on shape mismatch.
func (w *Weights) Swap(other *Weights) {
	if w.Rows != other.Rows || w.Cols != other.Cols || w.Dims != other.Dims {
		panic(fmt.Sprintf("lattice: swap shape mismatch: %dx%dx%d vs %dx%dx%d",
			w.Rows, w.Cols, w.Dims, other.Rows, other.Cols, other.Dims))
	}
	w.Data, other.Data = other.Data, w.Data
}

// CopyFrom overwrites w's data with other's. Panics on shape mismatch.
func (w *Weights) CopyFrom(other *Weights) {
	if w.Rows != other.Rows || w.Cols != other.Cols || w.Dims != other.Dims {
		panic(fmt.Sprintf("lattice: copy shape mismatch: %dx%dx%d vs %dx%dx%d",
			w.Rows, w.Cols, w.Dims, other.Rows, other.Cols, other.Dims))
	}
	copy(w.Data, other.Data)
}
