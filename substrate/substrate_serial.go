//go:build !mp && !shm

package substrate

import (
	"context"
	"time"
)

// serialComm is the default backend: a single rank, no collectives to
// actually perform. Broadcast and the all-reduces degenerate to a copy
// since there is only one rank to reduce across.
type serialComm struct {
	resource *Resource
	commTime time.Duration
}

// New constructs the default single-rank Communicator.
func New(opts ...Option) Communicator {
	o := applyOptions(opts)
	return &serialComm{resource: o.resource}
}

// NewGroup constructs a group of size ranks. The serial backend only
// supports size == 1; callers that need R > 1 must build with "mp" or
// "shm".
func NewGroup(size int, opts ...Option) ([]Communicator, error) {
	if size != 1 {
		return nil, errNeedsParallelBuild
	}
	return []Communicator{New(opts...)}, nil
}

func (c *serialComm) Rank() int          { return 0 }
func (c *serialComm) Size() int          { return 1 }
func (c *serialComm) BackendName() string { return "serial" }

func (c *serialComm) SymmetricAlloc(count int) Buffer {
	bytes := int64(count) * 8
	if err := c.resource.Reserve(0, bytes); err != nil {
		panic(err)
	}
	return &trackedBuffer{Buffer: newSliceBuffer(count), resource: c.resource, bytes: bytes}
}

func (c *serialComm) Broadcast(buf Buffer, root int) {
	_ = c.resource.AcquireIO(context.Background(), buf.Len()*8)
}

func (c *serialComm) AllSumDouble(src, dst []float64) {
	_ = c.resource.AcquireIO(context.Background(), len(src)*8)
	copy(dst, src)
}

func (c *serialComm) AllMaxDouble(src, dst []float64) {
	_ = c.resource.AcquireIO(context.Background(), len(src)*8)
	copy(dst, src)
}

func (c *serialComm) CommunicationTime() time.Duration { return c.commTime }

func (c *serialComm) Close() {}
