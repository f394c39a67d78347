//go:build shm

package substrate

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapBuffer is a Buffer backed by a single anonymous, shared mapping that
// every rank in the group views at the same address range. It is the
// closest idiomatic Go analog to OpenSHMEM's symmetric heap: no real
// cross-process shared memory is needed here because every rank is a
// goroutine in the same process, but routing allocation through mmap
// keeps the backend honest about being one-sided, not message-passing.
type mmapBuffer struct {
	region []byte
	data   []float64
}

func newMmapBuffer(count int) (*mmapBuffer, error) {
	if count == 0 {
		return &mmapBuffer{}, nil
	}
	size := count * 8
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	data := unsafe.Slice((*float64)(unsafe.Pointer(&region[0])), count)
	return &mmapBuffer{region: region, data: data}, nil
}

func (b *mmapBuffer) Doubles() []float64 { return b.data }
func (b *mmapBuffer) Len() int           { return len(b.data) }

func (b *mmapBuffer) Free() {
	if b.region != nil {
		unix.Munmap(b.region)
		b.region = nil
		b.data = nil
	}
}
