// Package diapasom trains a Self-Organizing Map lattice over a
// partitioned dataset, scaling from a single process to many ranks of
// a substrate.Communicator group.
package diapasom

import (
	"context"
	"fmt"
	"time"

	"github.com/exactlab/diapasom/dataset"
	"github.com/exactlab/diapasom/lattice"
	"github.com/exactlab/diapasom/substrate"
	"github.com/exactlab/diapasom/training"
)

// Summary is what a completed Run reports: epochs actually run, the
// convergence diff at the last committed epoch, and wall-clock/
// communication time reduced across every rank.
type Summary = training.Summary

// Stats exposes per-run BMU coverage diagnostics, handed to an
// EpochCallback after initialization and after every epoch except the
// one that converges.
type Stats = training.Stats

// Run loads the configured dataset, builds a lattice, and trains it to
// convergence (or Settings' epoch cap) on comm, which must already be
// sized to the group Run is part of (substrate.New for a single
// process, one Communicator from substrate.NewGroup per goroutine for a
// multi-rank run).
func Run(ctx context.Context, comm substrate.Communicator, opts ...Option) (Summary, error) {
	settings := applyOptions(opts)
	if err := settings.validate(); err != nil {
		return Summary{}, translateError(comm.Rank(), "validate settings", err)
	}

	log := settings.logger.WithRank(comm.Rank())

	ds, err := dataset.Load(ctx, comm, settings.source, settings.Dataset, settings.BatchSize,
		dataset.WithResource(settings.resourceLimit))
	if err != nil {
		err = translateError(comm.Rank(), "load dataset", err)
		log.LogRun(Summary{}, err)
		return Summary{}, err
	}

	weights := lattice.New(settings.Rows, settings.Cols, ds.Dimensions)
	constants := training.NewConstants(comm, ds, settings.Rows, settings.Cols,
		settings.Epochs, settings.DiffMin, settings.Radius, settings.RadiusDecay, settings.Seed)

	var trainOpts []training.Option
	if settings.DumpDir != "" {
		trainOpts = append(trainOpts, training.WithDumpWriter(&training.DumpWriter{
			Rank:     comm.Rank(),
			Dir:      settings.DumpDir,
			Every:    settings.DumpEvery,
			Compress: settings.DumpCompress,
		}))
	}
	lastEpoch := time.Now()
	trainOpts = append(trainOpts, training.WithEpochCallback(func(epoch int, weights *lattice.Weights, diff float64, stats *training.Stats) error {
		settings.metrics.RecordEpoch(epoch, diff, time.Since(lastEpoch))
		lastEpoch = time.Now()
		if settings.callback != nil {
			return settings.callback(epoch, weights, diff, stats)
		}
		return nil
	}))
	trainOpts = append(trainOpts, training.WithBatchHook(func(d time.Duration) {
		settings.metrics.RecordBatch(d)
	}))

	driver := training.New(comm, ds, constants, weights, trainOpts...)

	summary, err := driver.Run(ctx)
	if err != nil {
		err = translateError(comm.Rank(), "train", err)
	}
	settings.metrics.RecordRun(summary, err)
	log.LogRun(summary, err)
	return summary, err
}

// RunLocal is a convenience wrapper for the common single-process case:
// it builds a single-rank substrate.Communicator, runs it, and closes it.
func RunLocal(ctx context.Context, opts ...Option) (Summary, error) {
	comm := substrate.New(opts2substrate(opts)...)
	defer comm.Close()
	return Run(ctx, comm, opts...)
}

// RunGroup runs ranks ranks of the same training run concurrently as
// goroutines sharing one in-process substrate group, and returns every
// rank's Summary (identical up to floating point reduction order) or the
// first error any rank reported.
func RunGroup(ctx context.Context, ranks int, opts ...Option) ([]Summary, error) {
	comms, err := substrate.NewGroup(ranks, opts2substrate(opts)...)
	if err != nil {
		return nil, fmt.Errorf("diapasom: %w", err)
	}

	summaries := make([]Summary, ranks)
	errs := make([]error, ranks)
	done := make(chan int, ranks)

	for r, comm := range comms {
		go func(r int, comm substrate.Communicator) {
			defer comm.Close()
			summaries[r], errs[r] = Run(ctx, comm, opts...)
			done <- r
		}(r, comm)
	}
	for range comms {
		<-done
	}
	for _, err := range errs {
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

// opts2substrate extracts the substrate.Option values folded into
// Settings (resource limits) so the Communicators RunLocal and RunGroup
// construct internally carry the same resource accounting Run would
// apply to a caller-supplied Communicator.
func opts2substrate(opts []Option) []substrate.Option {
	s := applyOptions(opts)
	if s.resourceLimit == nil {
		return nil
	}
	return []substrate.Option{substrate.WithResource(s.resourceLimit)}
}
