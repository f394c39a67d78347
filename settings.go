package diapasom

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"

	"github.com/exactlab/diapasom/dataset"
	"github.com/exactlab/diapasom/substrate"
	"github.com/exactlab/diapasom/training"
)

// Settings are the parameters a training run consumes. Zero-valued
// fields take the same defaults the core applies internally
// (training.NewConstants documents them); Settings exists so a caller
// configures a Run with Option values instead of poking Constants
// directly.
type Settings struct {
	Dataset     string
	LatticeDim  int
	Rows, Cols  int
	Epochs      int
	DiffMin     float64
	BatchSize   int
	Radius      float64
	RadiusDecay float64
	Seed        int64

	DumpDir      string
	DumpEvery    int
	DumpCompress bool

	s3Client    *s3.Client
	minioClient *minio.Client

	source        dataset.Source
	callback      training.EpochCallback
	resourceLimit *substrate.Resource

	logger  *Logger
	metrics MetricsCollector
}

// Option configures Settings.
type Option func(*Settings)

// WithDataset sets the dataset path (local path, or an s3:// / minio://
// URI when the corresponding client option is also given).
func WithDataset(path string) Option { return func(s *Settings) { s.Dataset = path } }

// WithLatticeDim sets both Rows and Cols for a square lattice. A
// WithRows/WithCols option, given before or after it, overrides it for
// that dimension.
func WithLatticeDim(dim int) Option {
	return func(s *Settings) { s.LatticeDim = dim }
}

// WithRows sets the lattice's row count.
func WithRows(rows int) Option { return func(s *Settings) { s.Rows = rows } }

// WithCols sets the lattice's column count.
func WithCols(cols int) Option { return func(s *Settings) { s.Cols = cols } }

// WithEpochs caps the number of training epochs; 0 defaults to one
// epoch per dataset record.
func WithEpochs(epochs int) Option { return func(s *Settings) { s.Epochs = epochs } }

// WithDiffMin sets the convergence tolerance.
func WithDiffMin(diffMin float64) Option { return func(s *Settings) { s.DiffMin = diffMin } }

// WithBatchSize sets the global batch size; values below the number of
// ranks collapse every record into a single batch.
func WithBatchSize(batchSize int) Option { return func(s *Settings) { s.BatchSize = batchSize } }

// WithRadius sets the initial neighborhood radius; 0 defaults to half
// the smaller lattice dimension.
func WithRadius(radius float64) Option { return func(s *Settings) { s.Radius = radius } }

// WithRadiusDecay sets the per-epoch radius decay rate.
func WithRadiusDecay(rdecay float64) Option { return func(s *Settings) { s.RadiusDecay = rdecay } }

// WithSeed sets the random seed used for weight initialization; 0 draws
// a fresh seed on rank 0 and broadcasts it.
func WithSeed(seed int64) Option { return func(s *Settings) { s.Seed = seed } }

// WithDump enables periodic lattice dumps to dir, every epochs epochs
// (0 means every epoch), optionally zstd-compressed.
func WithDump(dir string, every int, compress bool) Option {
	return func(s *Settings) {
		s.DumpDir = dir
		s.DumpEvery = every
		s.DumpCompress = compress
	}
}

// WithEpochCallback registers a callback invoked after initialization
// and after every epoch except the one that converges.
func WithEpochCallback(cb training.EpochCallback) Option {
	return func(s *Settings) { s.callback = cb }
}

// WithS3Client configures the client used to resolve s3:// dataset paths.
func WithS3Client(client *s3.Client) Option {
	return func(s *Settings) { s.s3Client = client }
}

// WithMinioClient configures the client used to resolve minio:// dataset paths.
func WithMinioClient(client *minio.Client) Option {
	return func(s *Settings) { s.minioClient = client }
}

// WithSource overrides dataset source resolution entirely, bypassing the
// scheme-based dispatch WithS3Client/WithMinioClient configure.
func WithSource(src dataset.Source) Option {
	return func(s *Settings) { s.source = src }
}

// WithLogger sets the Logger used for the run. Without it, Run uses a
// Logger that discards everything.
func WithLogger(l *Logger) Option { return func(s *Settings) { s.logger = l } }

// WithMetrics sets the MetricsCollector used for the run. Without it,
// Run uses a no-op collector.
func WithMetrics(m MetricsCollector) Option { return func(s *Settings) { s.metrics = m } }

// WithResourceLimit bounds this run's dataset read rate via
// dataset.Load's own AcquireIO throttle, and also bounds symmetric
// allocation bytes for the Communicators RunLocal and RunGroup construct
// internally. It has no effect on allocation limits for a Communicator
// Run is handed directly: that Communicator's resource limit, if any,
// was already fixed when it was constructed.
func WithResourceLimit(r *substrate.Resource) Option {
	return func(s *Settings) { s.resourceLimit = r }
}

func applyOptions(opts []Option) Settings {
	var s Settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.LatticeDim == 0 {
		s.LatticeDim = 10
	}
	if s.Rows == 0 {
		s.Rows = s.LatticeDim
	}
	if s.Cols == 0 {
		s.Cols = s.LatticeDim
	}
	if s.logger == nil {
		s.logger = NoopLogger()
	}
	if s.metrics == nil {
		s.metrics = NoopMetricsCollector{}
	}
	if s.source == nil {
		s.source = dataset.NewMultiSource(s.s3Client, s.minioClient)
	}
	return s
}

func (s Settings) validate() error {
	if s.Dataset == "" {
		return fmt.Errorf("%w: dataset path is required", ErrProgrammer)
	}
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: lattice must have positive rows and cols, got %dx%d", ErrProgrammer, s.Rows, s.Cols)
	}
	return nil
}
