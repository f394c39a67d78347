package substrate

import "time"

// Buffer is a block of symmetric memory: every rank in a group allocates
// one with the same count, and collectives read from or write into it.
// A Buffer obtained from one Communicator must never be passed to another.
type Buffer interface {
	// Doubles exposes the backing storage. Backends that hold memory
	// outside the Go heap (shm) still return a live, directly mutable
	// slice view over it.
	Doubles() []float64

	// Len returns the number of float64 elements the buffer holds.
	Len() int

	// Free releases the buffer. Using it afterwards is undefined.
	Free()
}

// Communicator is the parallel substrate diapasom trains over. It gives a
// process its place in a group of ranks and a small set of collectives
// over symmetric Buffers.
//
// Collectives are blocking: every rank must call the same collective, in
// the same order, with a Buffer (or slice) of the same length. A rank that
// skips a call stalls the rest of the group forever.
type Communicator interface {
	// Rank returns this process's position in the group, 0 <= Rank() < Size().
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// BackendName identifies the compiled-in transport ("serial", "mp", "shm").
	BackendName() string

	// SymmetricAlloc allocates a Buffer of count float64s, collectively.
	SymmetricAlloc(count int) Buffer

	// Broadcast overwrites buf on every rank with root's contents of buf.
	Broadcast(buf Buffer, root int)

	// AllSumDouble element-wise sums src across every rank into dst on
	// every rank. len(dst) must equal len(src).
	AllSumDouble(src, dst []float64)

	// AllMaxDouble element-wise maxes src across every rank into dst on
	// every rank. len(dst) must equal len(src).
	AllMaxDouble(src, dst []float64)

	// CommunicationTime returns the cumulative wall time spent inside
	// collectives on this rank, for diagnostics.
	CommunicationTime() time.Duration

	// Close releases group-wide resources held by this handle. Every
	// rank must call it; like the collectives, it is a barrier.
	Close()
}

// Distribute returns how many of total items rank owns when total items
// are spread as evenly as possible across size ranks: the first total%size
// ranks get one extra item.
func Distribute(total, rank, size int) int {
	base := total / size
	if rank < total%size {
		base++
	}
	return base
}
