package diapasom

import (
	"errors"
	"fmt"

	"github.com/exactlab/diapasom/dataset"
	"github.com/exactlab/diapasom/substrate"
)

// ErrFormat indicates a malformed dataset record.
var ErrFormat = errors.New("diapasom: malformed dataset record")

// ErrResource indicates a symmetric allocation or other resource request
// exceeded a configured limit.
var ErrResource = errors.New("diapasom: resource limit exceeded")

// ErrProgrammer indicates misuse of the API (e.g. a missing dataset path
// or a non-positive lattice size) that a caller should fix in code, not
// retry.
var ErrProgrammer = errors.New("diapasom: programmer error")

// Kind classifies a FatalError for callers that branch on failure class
// rather than on the specific error value.
type Kind int

const (
	KindFormat Kind = iota
	KindResource
	KindProgrammer
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindResource:
		return "resource"
	case KindProgrammer:
		return "programmer"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// FatalError wraps an error that stopped a Run, tagging it with the rank
// it happened on and the Kind a caller can branch on.
type FatalError struct {
	Kind    Kind
	Rank    int
	Context string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("diapasom: rank %d: %s: %s: %v", e.Rank, e.Kind, e.Context, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// translateError normalizes errors surfacing from substrate, dataset, and
// training into a FatalError tagged with the appropriate Kind, the way a
// caller recovering from a Run failure expects to classify it.
func translateError(rank int, context string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, substrate.ErrResourceExceeded) {
		return &FatalError{Kind: KindResource, Rank: rank, Context: context, Err: fmt.Errorf("%w: %v", ErrResource, err)}
	}
	if errors.Is(err, dataset.ErrMalformedRecord) {
		return &FatalError{Kind: KindFormat, Rank: rank, Context: context, Err: fmt.Errorf("%w: %v", ErrFormat, err)}
	}
	if errors.Is(err, ErrProgrammer) {
		return &FatalError{Kind: KindProgrammer, Rank: rank, Context: context, Err: err}
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe
	}
	return &FatalError{Kind: KindIO, Rank: rank, Context: context, Err: err}
}
