package substrate

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ResourceConfig bounds how much symmetric memory a Communicator may hand
// out and how fast dataset IO against it may proceed.
type ResourceConfig struct {
	// MaxBytes is the hard ceiling on outstanding SymmetricAlloc bytes
	// reserved against this Resource, summed over every rank that shares
	// it. Zero means unlimited (tracking only).
	MaxBytes int64

	// BandwidthBytesPerSec throttles reads charged against this
	// resource via AcquireIO. Zero means unlimited.
	BandwidthBytesPerSec int64
}

// Resource accounts for and bounds a rank's use of symmetric memory and
// dataset IO bandwidth. Every backend's SymmetricAlloc runs its request
// through a Resource before handing out a Buffer, wrapped so the
// Buffer's Free gives the reservation back; exceeding MaxBytes makes
// SymmetricAlloc panic with an error wrapping ErrResourceExceeded rather
// than run out of memory. Every collective
// call and dataset.Load's read loop runs its byte count through
// AcquireIO, so BandwidthBytesPerSec bounds both simulated collective
// traffic and dataset IO.
type Resource struct {
	cfg ResourceConfig

	memSem *semaphore.Weighted
	used   int64

	ioLimiter *rate.Limiter
}

// NewResource constructs a Resource controller from cfg.
func NewResource(cfg ResourceConfig) *Resource {
	r := &Resource{cfg: cfg}
	if cfg.MaxBytes > 0 {
		r.memSem = semaphore.NewWeighted(cfg.MaxBytes)
	}
	if cfg.BandwidthBytesPerSec > 0 {
		r.ioLimiter = rate.NewLimiter(rate.Limit(cfg.BandwidthBytesPerSec), int(cfg.BandwidthBytesPerSec))
	}
	return r
}

// Reserve attempts to account for an allocation of bytes. It fails fast
// (no blocking) since SymmetricAlloc is a collective and must not stall
// on a per-rank resource wait: a blocked rank would look like a missing
// collective call to every other rank in the group.
func (r *Resource) Reserve(rank int, bytes int64) error {
	if r == nil || bytes <= 0 {
		return nil
	}
	if r.memSem != nil && !r.memSem.TryAcquire(bytes) {
		return resourceErr(rank, bytes, r.cfg.MaxBytes)
	}
	r.used += bytes
	return nil
}

// Release returns bytes previously reserved with Reserve.
func (r *Resource) Release(bytes int64) {
	if r == nil || bytes <= 0 {
		return
	}
	if r.memSem != nil {
		r.memSem.Release(bytes)
	}
	r.used -= bytes
}

// Used returns the currently reserved byte count.
func (r *Resource) Used() int64 {
	if r == nil {
		return 0
	}
	return r.used
}

// AcquireIO blocks until the configured bandwidth allows bytes worth of
// dataset IO to proceed, or ctx is canceled.
func (r *Resource) AcquireIO(ctx context.Context, bytes int) error {
	if r == nil || r.ioLimiter == nil {
		return nil
	}
	return r.ioLimiter.WaitN(ctx, bytes)
}
