package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"github.com/pierrec/lz4/v4"
)

// Source opens a dataset path for reading. The path's scheme (if any)
// decides where it is read from; the rest of the dataset loader neither
// knows nor cares which Source served a particular path.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// MultiSource dispatches by URI scheme: "s3://bucket/key" and
// "minio://bucket/key" to the corresponding client, anything else to the
// local filesystem. It is the Source the root package's Run uses unless
// a caller supplies another; callers that only ever train from local
// files never need to touch it directly.
type MultiSource struct {
	s3     *s3.Client
	minio  *minio.Client
	local  Source
}

// NewMultiSource builds a MultiSource. Either client may be nil; paths
// using a scheme with no configured client fail with a descriptive error
// rather than silently falling back to disk.
func NewMultiSource(s3Client *s3.Client, minioClient *minio.Client) *MultiSource {
	return &MultiSource{s3: s3Client, minio: minioClient, local: LocalSource{}}
}

func (m *MultiSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		if m.s3 == nil {
			return nil, fmt.Errorf("dataset: %q requires an s3 client, none configured", path)
		}
		return openS3(ctx, m.s3, strings.TrimPrefix(path, "s3://"))
	case strings.HasPrefix(path, "minio://"):
		if m.minio == nil {
			return nil, fmt.Errorf("dataset: %q requires a minio client, none configured", path)
		}
		return openMinio(ctx, m.minio, strings.TrimPrefix(path, "minio://"))
	default:
		return m.local.Open(ctx, path)
	}
}

// LocalSource reads datasets from the local filesystem.
type LocalSource struct{}

func (LocalSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return wrapDecompress(path, f)
}

func splitBucketKey(path string) (bucket, key string, err error) {
	idx := strings.IndexByte(path, '/')
	if idx < 0 {
		return "", "", fmt.Errorf("dataset: %q is missing a /key after the bucket name", path)
	}
	return path[:idx], path[idx+1:], nil
}

// NewDefaultS3Client builds an s3.Client from the standard AWS
// credential chain, for callers that don't already hold one.
func NewDefaultS3Client(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("dataset: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// openS3 downloads the object through a manager.Downloader, which splits
// large objects into concurrent ranged GETs rather than one long-lived
// GetObject stream, the way a multi-gigabyte dataset file benefits from.
func openS3(ctx context.Context, client *s3.Client, path string) (io.ReadCloser, error) {
	bucket, key, err := splitBucketKey(path)
	if err != nil {
		return nil, err
	}
	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(client)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("dataset: download s3://%s/%s: %w", bucket, key, err)
	}
	return wrapDecompress(key, io.NopCloser(bytes.NewReader(buf.Bytes())))
}

func openMinio(ctx context.Context, client *minio.Client, path string) (io.ReadCloser, error) {
	bucket, key, err := splitBucketKey(path)
	if err != nil {
		return nil, err
	}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("dataset: get minio://%s/%s: %w", bucket, key, err)
	}
	return wrapDecompress(key, obj)
}

// wrapDecompress wraps r with a decompressing reader chosen by name's
// extension, leaving uncompressed paths untouched. The returned
// ReadCloser closes the decompressor (where it has state to release)
// before closing the underlying stream.
func wrapDecompress(name string, r io.ReadCloser) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &joinedCloser{Reader: zr, closers: []io.Closer{zr, r}}, nil

	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		zrc := zr.IOReadCloser()
		return &joinedCloser{Reader: zrc, closers: []io.Closer{zrc, r}}, nil

	case strings.HasSuffix(name, ".lz4"):
		return &joinedCloser{Reader: lz4.NewReader(r), closers: []io.Closer{r}}, nil

	default:
		return r, nil
	}
}

type joinedCloser struct {
	io.Reader
	closers []io.Closer
}

func (j *joinedCloser) Close() error {
	var err error
	for _, c := range j.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
