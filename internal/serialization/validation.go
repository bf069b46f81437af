package serialization

import (
	"fmt"
)

// Validation limits for resource protection.
const (
	MaxBodySize = 1 << 30 // 1GB - maximum encoded body size
	MaxOps      = 1 << 26 // maximum number of operator records
	MaxRows     = 1 << 28 // maximum number of tape rows
	MaxPar      = 1 << 26 // maximum parameter pool size
)

// validateBody checks the decoded body before it is turned into a tape.
// Structural invariants are left to tape.Validate.
func validateBody(b *body) error {
	if len(b.Ops) > MaxOps {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyOps, len(b.Ops), MaxOps)
	}
	if b.NumVar < 0 || b.NumVar > MaxRows {
		return &ValidationError{
			Type:    "rows",
			Details: fmt.Sprintf("row count %d outside [0, %d]", b.NumVar, MaxRows),
		}
	}
	if b.NumLoad < 0 || b.NumLoad > len(b.Ops) {
		return &ValidationError{
			Type:    "loads",
			Details: fmt.Sprintf("load count %d with %d operators", b.NumLoad, len(b.Ops)),
		}
	}
	if len(b.Par) > MaxPar {
		return &ValidationError{
			Type:    "parameters",
			Details: fmt.Sprintf("got %d, max %d", len(b.Par), MaxPar),
		}
	}
	if len(b.Combined) != len(b.CombinedVar) {
		return &ValidationError{
			Type:    "length",
			Details: fmt.Sprintf("combined has %d entries, flags %d", len(b.Combined), len(b.CombinedVar)),
		}
	}
	if len(b.Dependent) != len(b.DependentPar) {
		return &ValidationError{
			Type:    "length",
			Details: fmt.Sprintf("dependent has %d entries, flags %d", len(b.Dependent), len(b.DependentPar)),
		}
	}
	for off := 1; off <= len(b.Combined); off += b.Combined[off-1] + 1 {
		if n := b.Combined[off-1]; n < 0 || off+n > len(b.Combined) {
			return &ValidationError{
				Type:    "vector",
				Details: fmt.Sprintf("block at offset %d has length %d", off, n),
			}
		}
	}
	return nil
}
