package substrate

// Option configures a Communicator or Group at construction time.
type Option func(*options)

type options struct {
	resource *Resource
}

// WithResource attaches a Resource controller that bounds symmetric
// allocations and collective bandwidth for the constructed Communicator.
// Without it, allocations are untracked and unlimited.
func WithResource(r *Resource) Option {
	return func(o *options) { o.resource = r }
}

// WithBandwidthLimit throttles every collective call's data movement
// (Broadcast, AllSumDouble, AllMaxDouble) to at most bytesPerSec bytes
// per second, by attaching a Resource configured with only a bandwidth
// limiter (no allocation ceiling). Useful for reproducing
// communication-bound behavior in tests without real network hardware.
// It is shorthand for WithResource(NewResource(ResourceConfig{BandwidthBytesPerSec: bytesPerSec}));
// pass a Resource built with both fields set through WithResource
// directly to bound allocations and bandwidth together.
func WithBandwidthLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resource = NewResource(ResourceConfig{BandwidthBytesPerSec: bytesPerSec})
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
