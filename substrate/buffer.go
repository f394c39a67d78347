package substrate

// sliceBuffer is a Buffer backed by a plain Go slice. Used by the serial
// and mp backends, where each rank's memory is private to its own
// goroutine (or process) and collectives move copies of data, not the
// memory itself.
type sliceBuffer struct {
	data []float64
}

func newSliceBuffer(count int) *sliceBuffer {
	return &sliceBuffer{data: make([]float64, count)}
}

func (b *sliceBuffer) Doubles() []float64 { return b.data }
func (b *sliceBuffer) Len() int           { return len(b.data) }
func (b *sliceBuffer) Free()              { b.data = nil }

// trackedBuffer wraps a Buffer returned by SymmetricAlloc with the
// Resource and byte count that allocation reserved, so Free gives the
// bytes back instead of leaving Resource.Used as a one-way ratchet.
// Wrapping here (rather than teaching sliceBuffer/mmapBuffer about
// Resource) keeps the shm backend's shared mmapBuffer simple: every
// rank wraps its own view of the same mapping with its own reservation,
// and each wrapper's Free releases only the bytes that rank reserved.
type trackedBuffer struct {
	Buffer
	resource *Resource
	bytes    int64
}

func (b *trackedBuffer) Free() {
	b.Buffer.Free()
	b.resource.Release(b.bytes)
}
