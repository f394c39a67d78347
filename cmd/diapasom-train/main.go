// Command diapasom-train trains a Self-Organizing Map lattice over a
// dataset file, printing a summary of the run to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/exactlab/diapasom"
)

var (
	dataset     = flag.String("dataset", "", "dataset path (local file, or s3:// / minio:// URI)")
	rows        = flag.Int("rows", 10, "lattice row count")
	cols        = flag.Int("cols", 10, "lattice column count")
	ranks       = flag.Int("ranks", 1, "number of simulated ranks to train with")
	epochs      = flag.Int("epochs", 0, "epoch cap (0: one epoch per dataset record)")
	diffMin     = flag.Float64("diffmin", 0, "convergence tolerance (0: disabled)")
	batchSize   = flag.Int("batchsize", 0, "global batch size (0 or below rank count: one batch)")
	radius      = flag.Float64("radius", 0, "initial neighborhood radius (0: half the smaller lattice dimension)")
	radiusDecay = flag.Float64("radiusdecay", 0, "per-epoch radius decay rate")
	seed        = flag.Int64("seed", 0, "random seed (0: drawn at run time)")
	dumpDir     = flag.String("dumpdir", "", "directory to dump the lattice to after every epoch (empty: disabled)")
	dumpEvery   = flag.Int("dumpevery", 0, "dump period in epochs (0: every epoch)")
	verbose     = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	if *dataset == "" {
		fmt.Fprintln(os.Stderr, "diapasom-train: -dataset is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	opts := []diapasom.Option{
		diapasom.WithDataset(*dataset),
		diapasom.WithRows(*rows),
		diapasom.WithCols(*cols),
		diapasom.WithEpochs(*epochs),
		diapasom.WithDiffMin(*diffMin),
		diapasom.WithBatchSize(*batchSize),
		diapasom.WithRadius(*radius),
		diapasom.WithRadiusDecay(*radiusDecay),
		diapasom.WithSeed(*seed),
		diapasom.WithLogger(diapasom.NewTextLogger(level)),
	}
	if *dumpDir != "" {
		opts = append(opts, diapasom.WithDump(*dumpDir, *dumpEvery, false))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *ranks <= 1 {
		summary, err := diapasom.RunLocal(ctx, opts...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "diapasom-train:", err)
			os.Exit(1)
		}
		printSummary(summary)
		return
	}

	summaries, err := diapasom.RunGroup(ctx, *ranks, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "diapasom-train:", err)
		os.Exit(1)
	}
	printSummary(summaries[0])
}

func printSummary(summary diapasom.Summary) {
	fmt.Fprintf(os.Stderr, "epochs=%d diff=%g total=%s communication=%s\n",
		summary.Epochs, summary.Diff, summary.Total, summary.Communication)
}
