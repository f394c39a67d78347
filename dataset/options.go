package dataset

import "github.com/exactlab/diapasom/substrate"

// Option configures a Load call.
type Option func(*options)

type options struct {
	resource *substrate.Resource
}

// WithResource throttles Load's read loop against r's configured
// bandwidth limit, the same Resource a substrate.Communicator accounts
// symmetric allocations against, so one Resource can bound both a
// run's memory footprint and its dataset IO rate.
func WithResource(r *substrate.Resource) Option {
	return func(o *options) { o.resource = r }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
