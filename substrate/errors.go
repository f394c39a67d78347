package substrate

import (
	"errors"
	"fmt"
)

// ErrResourceExceeded is the sentinel behind every symmetric allocation
// that was refused by a Resource limit. Callers that need to distinguish
// it from other panics recovered out of a Communicator should use
// errors.Is against this value.
var ErrResourceExceeded = errors.New("substrate: symmetric allocation exceeds resource limit")

// errNeedsParallelBuild is returned by NewGroup when the build lacks a
// multi-rank backend (the default "serial" build only ever has one rank).
var errNeedsParallelBuild = errors.New("substrate: this build supports only a single rank; rebuild with -tags mp or -tags shm for size > 1")

func resourceErr(rank int, bytes int64, limit int64) error {
	return fmt.Errorf("%w: rank %d requested %d bytes, limit %d", ErrResourceExceeded, rank, bytes, limit)
}
