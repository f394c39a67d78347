//go:build mp

package substrate

import (
	"context"
	"time"
)

// mpComm is a message-passing rank: every collective copies data across
// the group's Rendezvous barrier rather than touching another rank's
// memory directly. It simulates an MPI-style group as goroutines within
// one process, since the example corpus carries no real MPI transport to
// bind against.
type mpComm struct {
	rank     int
	group    *Group
	resource *Resource
	commTime time.Duration
}

// New constructs a single-rank Communicator (rank 0 of a group of 1).
// It exists so the mp build still satisfies the normal one-process-per-
// rank production path for the trivial, single-rank case; real multi-host
// mp deployment is out of scope without a networking dependency to ground
// it on, so multi-rank use goes through NewGroup instead.
func New(opts ...Option) Communicator {
	o := applyOptions(opts)
	comms, _ := newGroupComms(1, o)
	return comms[0]
}

// NewGroup constructs size ranks sharing one in-process Group. Each
// returned Communicator must be driven from its own goroutine: calling
// two of them from the same goroutine deadlocks the first collective.
func NewGroup(size int, opts ...Option) ([]Communicator, error) {
	o := applyOptions(opts)
	return newGroupComms(size, o)
}

func newGroupComms(size int, o options) ([]Communicator, error) {
	g := newGroup(size)
	comms := make([]Communicator, size)
	for r := 0; r < size; r++ {
		comms[r] = &mpComm{rank: r, group: g, resource: o.resource}
	}
	return comms, nil
}

func (c *mpComm) Rank() int           { return c.rank }
func (c *mpComm) Size() int           { return c.group.Size() }
func (c *mpComm) BackendName() string { return "mp" }

func (c *mpComm) SymmetricAlloc(count int) Buffer {
	bytes := int64(count) * 8
	if err := c.resource.Reserve(c.rank, bytes); err != nil {
		panic(err)
	}
	c.group.Rendezvous(c.rank, nil)
	return &trackedBuffer{Buffer: newSliceBuffer(count), resource: c.resource, bytes: bytes}
}

func (c *mpComm) Broadcast(buf Buffer, root int) {
	start := time.Now()
	_ = c.resource.AcquireIO(context.Background(), buf.Len()*8)
	results := c.group.Rendezvous(c.rank, append([]float64(nil), buf.Doubles()...))
	rootData := results[root].([]float64)
	copy(buf.Doubles(), rootData)
	c.commTime += time.Since(start)
}

func (c *mpComm) AllSumDouble(src, dst []float64) {
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

func (c *mpComm) AllMaxDouble(src, dst []float64) {
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

func (c *mpComm) CommunicationTime() time.Duration { return c.commTime }

func (c *mpComm) Close() {
	c.group.Rendezvous(c.rank, nil)
}
