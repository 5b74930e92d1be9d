package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/guillocut/internal/model"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrOversizedItem indicates an item that cannot fit an empty bin in any
	// allowed orientation, or that has non-positive dimensions.
	ErrOversizedItem = errors.New("item exceeds bin dimensions")

	// ErrInvalidBin indicates non-positive bin dimensions.
	ErrInvalidBin = errors.New("invalid bin dimensions")

	// ErrInvalidConfig indicates an unknown strategy name or a negative kerf.
	ErrInvalidConfig = errors.New("invalid pack config")
)

// OversizedItemError is returned when upfront validation rejects an item.
// The whole run is aborted and no placements are produced.
type OversizedItemError struct {
	Item      model.Item
	Index     int // Position in the caller's item list
	BinWidth  float64
	BinHeight float64
	Malformed bool // Width or height was not a finite positive number
}

func (e *OversizedItemError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("item %q (%g x %g) has invalid dimensions and cannot be placed: exceeds bin dimensions %g x %g",
			e.Item.Label(), e.Item.Width, e.Item.Height, e.BinWidth, e.BinHeight)
	}
	return fmt.Sprintf("item %q (%g x %g) exceeds bin dimensions %g x %g",
		e.Item.Label(), e.Item.Width, e.Item.Height, e.BinWidth, e.BinHeight)
}

// Is returns true if the target error is ErrOversizedItem.
func (e *OversizedItemError) Is(target error) bool {
	return target == ErrOversizedItem
}
