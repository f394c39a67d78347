package training

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/exactlab/diapasom/dataset"
	"github.com/exactlab/diapasom/fraction"
	"github.com/exactlab/diapasom/lattice"
	"github.com/exactlab/diapasom/substrate"
)

// EpochCallback is invoked once after weight initialization (epoch 0,
// with diff 1) and once after every completed epoch whose diff does not
// meet the convergence test, with the lattice's current weights, the
// convergence diff that epoch produced, and BMU coverage diagnostics. It
// is not invoked for the epoch that converges. Returning an error stops
// the run after the current epoch finishes.
type EpochCallback func(epoch int, weights *lattice.Weights, diff float64, stats *Stats) error

// Constants are the parameters fixed for the lifetime of a training run.
type Constants struct {
	Rank, Ranks int

	Epochs        int
	DiffMin       float64
	BatchSize     int // this rank's share of the global batch size
	Batches       int
	Radius        float64
	RadiusDecay   float64
	Seed          int64
	ValueMean     float64
}

// NewConstants derives Constants from a loaded Dataset and a substrate
// group, applying the same defaulting rules the core uses when a caller
// leaves a setting at its zero value:
//   - epochs <= 0 means "one epoch per record", matching the original's
//     epochs-defaults-to-record-count convention.
//   - diffmin below 1e-6 is treated as "no convergence test".
//   - radius <= 1e-6 means half the smaller lattice dimension.
func NewConstants(comm substrate.Communicator, ds *dataset.Dataset, rows, cols int, epochs int, diffMin, radius, radiusDecay float64, seed int64) Constants {
	if epochs <= 0 {
		epochs = ds.Total
	}
	if diffMin <= 1e-6 {
		diffMin = 0
	}
	if radius <= 1e-6 {
		radius = 0.5 * float64(min(rows, cols))
	}
	batches := (ds.Total + ds.BatchSize - 1) / ds.BatchSize

	return Constants{
		Rank:        comm.Rank(),
		Ranks:       comm.Size(),
		Epochs:      epochs,
		DiffMin:     diffMin,
		BatchSize:   ds.RankBatchSize(),
		Batches:     batches,
		Radius:      radius,
		RadiusDecay: radiusDecay,
		Seed:        seed,
		ValueMean:   ds.ValueMean,
	}
}

// Summary is what a completed Run reports.
type Summary struct {
	Epochs        int
	Diff          float64
	Total         time.Duration
	Communication time.Duration
}

// Driver runs the epoch/batch training state machine over one lattice.
type Driver struct {
	Constants Constants

	comm     substrate.Communicator
	dataset  *dataset.Dataset
	weights  *lattice.Weights
	fraction *fraction.Fraction
	stats    *Stats
	dump     *DumpWriter
	callback EpochCallback
	onBatch  func(time.Duration)

	epoch  int
	batch  int
	radius float64
	diff   float64
}

// New constructs a Driver ready to Run. weights must already be shaped
// rows x cols x ds.Dimensions; Run overwrites them in place with its
// random initialization.
func New(comm substrate.Communicator, ds *dataset.Dataset, constants Constants, weights *lattice.Weights, opts ...Option) *Driver {
	o := applyOptions(opts)
	return &Driver{
		Constants: constants,
		comm:      comm,
		dataset:   ds,
		weights:   weights,
		fraction:  fraction.New(comm, weights.Rows, weights.Cols, weights.Dims),
		stats:     NewStats(weights.Cells()),
		dump:      o.dump,
		callback:  o.callback,
		onBatch:   o.onBatch,
		radius:    constants.Radius,
		diff:      1,
	}
}

// Run drives the lattice through weight initialization, every epoch up
// to Constants.Epochs, and the convergence test, calling the configured
// EpochCallback and DumpWriter after initialization and after every
// epoch except the one that converges. ctx is checked between batches so
// a long run can be canceled.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	d.randomInit()

	d.epoch = 0
	if err := d.checkpoint(); err != nil {
		return Summary{}, err
	}

	completed := 0
	for d.epoch = 1; d.epoch <= d.Constants.Epochs; d.epoch++ {
		for d.batch = 1; d.batch <= d.Constants.Batches; d.batch++ {
			if err := ctx.Err(); err != nil {
				return Summary{}, err
			}
			d.presentBatch()
		}

		d.radius = d.Constants.Radius * math.Exp(float64(d.epoch)*d.Constants.RadiusDecay)
		completed = d.epoch

		if d.diff < d.Constants.DiffMin {
			break
		}

		if err := d.checkpoint(); err != nil {
			return Summary{}, err
		}
	}

	total := time.Since(start)
	totalReduced := make([]float64, 1)
	d.comm.AllMaxDouble([]float64{float64(total)}, totalReduced)

	commReduced := make([]float64, 1)
	d.comm.AllMaxDouble([]float64{float64(d.comm.CommunicationTime())}, commReduced)

	return Summary{
		Epochs:        completed,
		Diff:          d.diff,
		Total:         time.Duration(totalReduced[0]),
		Communication: time.Duration(commReduced[0]),
	}, nil
}

// checkpoint runs the dump writer (if any) and the epoch callback (if
// any) for the current epoch.
func (d *Driver) checkpoint() error {
	if d.dump != nil {
		if err := d.dump.Write(d.epoch, d.weights); err != nil {
			return err
		}
	}
	if d.callback != nil {
		return d.callback(d.epoch, d.weights, d.diff, d.stats)
	}
	return nil
}

// randomInit seeds every cell with a record picked uniformly at random
// from across the whole (distributed) dataset: every rank draws the same
// sequence of global indices, and the rank that owns the drawn record
// broadcasts it to the rest.
//
// The original used the process's wall-clock time to seed each rank's
// generator independently when no seed was given, which only agrees
// across ranks by coincidence. Rank 0 here draws (or is given) the seed
// and broadcasts it, so every build agrees by construction.
func (d *Driver) randomInit() {
	seed := d.Constants.Seed
	seedBuf := d.comm.SymmetricAlloc(1)
	if d.comm.Rank() == 0 {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		seedBuf.Doubles()[0] = float64(seed)
	}
	d.comm.Broadcast(seedBuf, 0)
	seed = int64(seedBuf.Doubles()[0])
	seedBuf.Free()

	rng := rand.New(rand.NewSource(seed))
	sendBuf := d.comm.SymmetricAlloc(d.weights.Dims)

	for row := 0; row < d.weights.Rows; row++ {
		for col := 0; col < d.weights.Cols; col++ {
			gidx := rng.Intn(d.dataset.Total)
			rank, lidx := d.dataset.GlobalToLocal(gidx)

			if d.comm.Rank() == rank {
				copy(sendBuf.Doubles(), d.dataset.LocalRecord(lidx))
			}
			d.comm.Broadcast(sendBuf, rank)
			copy(d.weights.Entry(row, col), sendBuf.Doubles())
		}
	}
	sendBuf.Free()
}

// presentBatch presents this rank's share of the current batch's records
// to the lattice, accumulates their contribution into the fraction,
// reduces it across every rank, and commits it onto the weights.
func (d *Driver) presentBatch() {
	start := time.Now()
	d.fraction.Init()

	first := (d.batch - 1) * d.Constants.BatchSize
	end := min(d.dataset.Local(), first+d.Constants.BatchSize)

	for lidx := first; lidx < end; lidx++ {
		record := d.dataset.LocalRecord(lidx)
		brow, bcol := bmuFind(d.weights, record)
		d.stats.Touch(d.weights.Index(brow, bcol))
		d.fraction.Accumulate(d.weights, record, brow, bcol, d.radius)
	}

	d.fraction.Reduce(d.comm)

	raw := d.fraction.Commit(d.weights)
	d.diff = raw / (d.Constants.ValueMean * float64(d.weights.Rows*d.weights.Cols*d.weights.Dims))

	if d.onBatch != nil {
		d.onBatch(time.Since(start))
	}
}

// bmuFind returns the cell whose weight vector is closest (squared
// Euclidean distance) to record.
func bmuFind(weights *lattice.Weights, record []float64) (brow, bcol int) {
	mindist := squaredDistance(weights.Entry(0, 0), record)
	for r := 0; r < weights.Rows; r++ {
		for c := 0; c < weights.Cols; c++ {
			d := squaredDistance(weights.Entry(r, c), record)
			if d < mindist {
				mindist = d
				brow, bcol = r, c
			}
		}
	}
	return brow, bcol
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
