package training

import "time"

// Option configures a Driver at construction time.
type Option func(*options)

type options struct {
	dump     *DumpWriter
	callback EpochCallback
	onBatch  func(time.Duration)
}

// WithEpochCallback registers a callback invoked after initialization
// and after every epoch except the one that converges.
func WithEpochCallback(cb EpochCallback) Option {
	return func(o *options) { o.callback = cb }
}

// WithDumpWriter registers a DumpWriter that persists the lattice after
// initialization and after every epoch except the one that converges
// (subject to the DumpWriter's own Every period).
func WithDumpWriter(w *DumpWriter) Option {
	return func(o *options) { o.dump = w }
}

// WithBatchHook registers a function invoked after every batch commits,
// with how long the batch took to present, accumulate, reduce and commit.
func WithBatchHook(hook func(time.Duration)) Option {
	return func(o *options) { o.onBatch = hook }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
