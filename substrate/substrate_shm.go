//go:build shm

package substrate

import (
	"context"
	"time"
)

// shmComm is a one-sided rank: collectives synchronize through the
// group's Rendezvous barrier but read and write a shared mmap arena
// directly rather than copying values across the barrier. This is the
// closest idiomatic-Go analog to OpenSHMEM semantics available without a
// real multi-host shared-memory transport in the dependency set.
type shmComm struct {
	rank     int
	group    *Group
	resource *Resource
	commTime time.Duration
}

// New constructs a single-rank Communicator. As with the mp backend,
// real multi-host shm deployment is out of scope; NewGroup covers the
// multi-rank case this backend exists to exercise.
func New(opts ...Option) Communicator {
	o := applyOptions(opts)
	comms, _ := newGroupComms(1, o)
	return comms[0]
}

// NewGroup constructs size ranks sharing one in-process Group and one
// mmap arena per symmetric allocation.
func NewGroup(size int, opts ...Option) ([]Communicator, error) {
	o := applyOptions(opts)
	return newGroupComms(size, o)
}

func newGroupComms(size int, o options) ([]Communicator, error) {
	g := newGroup(size)
	comms := make([]Communicator, size)
	for r := 0; r < size; r++ {
		comms[r] = &shmComm{rank: r, group: g, resource: o.resource}
	}
	return comms, nil
}

func (c *shmComm) Rank() int           { return c.rank }
func (c *shmComm) Size() int           { return c.group.Size() }
func (c *shmComm) BackendName() string { return "shm" }

// SymmetricAlloc is collective: rank 0 creates the shared arena and
// publishes it across the barrier; every rank (including rank 0) returns
// a Buffer view over the same underlying mapping.
func (c *shmComm) SymmetricAlloc(count int) Buffer {
	bytes := int64(count) * 8
	if err := c.resource.Reserve(c.rank, bytes); err != nil {
		panic(err)
	}

	var shared *mmapBuffer
	if c.rank == 0 {
		buf, err := newMmapBuffer(count)
		if err != nil {
			panic(err)
		}
		shared = buf
	}
	results := c.group.Rendezvous(c.rank, shared)
	return &trackedBuffer{Buffer: results[0].(*mmapBuffer), resource: c.resource, bytes: bytes}
}

func (c *shmComm) Broadcast(buf Buffer, root int) {
	start := time.Now()
	_ = c.resource.AcquireIO(context.Background(), buf.Len()*8)
	results := c.group.Rendezvous(c.rank, buf.Doubles())
	if c.rank != root {
		rootData := results[root].([]float64)
		copy(buf.Doubles(), rootData)
	}
	c.commTime += time.Since(start)
}

func (c *shmComm) AllSumDouble(src, dst []float64) {
	start := time.Now()
	_ = c.resource.AcquireIO(context.Background(), len(src)*8)
	results := c.group.Rendezvous(c.rank, append([]float64(nil), src...))
	n := len(dst)
	for i := 0; i < n; i++ {
		dst[i] = 0
	}
	for _, v := range results {
		row := v.([]float64)
		for i := 0; i < n; i++ {
			dst[i] += row[i]
		}
	}
	c.commTime += time.Since(start)
}

func (c *shmComm) AllMaxDouble(src, dst []float64) {
	start := time.Now()
	_ = c.resource.AcquireIO(context.Background(), len(src)*8)
	results := c.group.Rendezvous(c.rank, append([]float64(nil), src...))
	n := len(dst)
	first := results[0].([]float64)
	copy(dst, first[:n])
	for _, v := range results[1:] {
		row := v.([]float64)
		for i := 0; i < n; i++ {
			if row[i] > dst[i] {
				dst[i] = row[i]
			}
		}
	}
	c.commTime += time.Since(start)
}

func (c *shmComm) CommunicationTime() time.Duration { return c.commTime }

func (c *shmComm) Close() {
	c.group.Rendezvous(c.rank, nil)
}
