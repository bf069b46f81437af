package autodiff

import (
	"errors"

	"github.com/born-ml/adtape/internal/sweep"
)

// Usage errors returned by Recorder and Fun.
var (
	ErrOrderSkipped      = errors.New("autodiff: forward order skips an order that was never computed")
	ErrNotComputed       = errors.New("autodiff: reverse order exceeds the stored forward orders")
	ErrDimension         = errors.New("autodiff: argument has the wrong dimension")
	ErrNoForJac          = errors.New("autodiff: RevSparseHes needs a prior ForSparseJac with the same column count")
	ErrIndex             = errors.New("autodiff: index out of range")
	ErrComparisonChanged = errors.New("autodiff: recorded comparisons changed")
	ErrRecorder          = errors.New("autodiff: value belongs to another recorder")
	ErrStopped           = errors.New("autodiff: recorder already stopped")
	ErrOrdering          = errors.New("autodiff: independent variables must be declared before any operation")
)

// IndexError reports an indirect vector index outside the vector at replay.
type IndexError = sweep.IndexError
