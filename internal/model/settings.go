package model

import (
	"fmt"
	"math"
	"strings"
)

// SortStrategy selects the key items are ordered by before packing.
type SortStrategy string

const (
	SortArea        SortStrategy = "area"        // width*height
	SortPerimeter   SortStrategy = "perimeter"   // 2*(width+height)
	SortLongSide    SortStrategy = "long-side"   // max side, ties by min side
	SortShortSide   SortStrategy = "short-side"  // min side, ties by max side
	SortDifferences SortStrategy = "differences" // |width-height|
	SortRatio       SortStrategy = "ratio"       // max side / min side
)

// SortDirection orders the sort key ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SplitStrategy decides which residual strip keeps the corner area after a
// placement.
type SplitStrategy string

const (
	SplitShortAxis SplitStrategy = "short-axis"
	SplitLongAxis  SplitStrategy = "long-axis"
)

// SelectionStrategy is the fit score used to rank candidate placements.
type SelectionStrategy string

const (
	SelectBestAreaFit      SelectionStrategy = "best-area-fit"
	SelectBestShortSideFit SelectionStrategy = "best-short-side-fit"
	SelectBestLongSideFit  SelectionStrategy = "best-long-side-fit"
)

var (
	sortStrategies      = []SortStrategy{SortArea, SortPerimeter, SortLongSide, SortShortSide, SortDifferences, SortRatio}
	sortDirections      = []SortDirection{SortAsc, SortDesc}
	splitStrategies     = []SplitStrategy{SplitShortAxis, SplitLongAxis}
	selectionStrategies = []SelectionStrategy{SelectBestAreaFit, SelectBestShortSideFit, SelectBestLongSideFit}
)

// SortStrategies returns every supported sort strategy.
func SortStrategies() []SortStrategy { return append([]SortStrategy(nil), sortStrategies...) }

// SplitStrategies returns every supported split strategy.
func SplitStrategies() []SplitStrategy { return append([]SplitStrategy(nil), splitStrategies...) }

// SelectionStrategies returns every supported selection strategy.
func SelectionStrategies() []SelectionStrategy {
	return append([]SelectionStrategy(nil), selectionStrategies...)
}

// normalizeName folds case and drops separators so "LongSide", "long-side"
// and "LONG_SIDE" compare equal.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func parseEnum[T ~string](kind, s string, values []T, aliases map[string]T) (T, error) {
	n := normalizeName(s)
	for _, v := range values {
		if normalizeName(string(v)) == n {
			return v, nil
		}
	}
	if v, ok := aliases[n]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

// ParseSortStrategy parses a sort strategy name.
func ParseSortStrategy(s string) (SortStrategy, error) {
	return parseEnum("sort strategy", s, sortStrategies, nil)
}

// ParseSortDirection parses "asc"/"desc" in any case.
func ParseSortDirection(s string) (SortDirection, error) {
	return parseEnum("sort direction", s, sortDirections, map[string]SortDirection{
		"ascending":  SortAsc,
		"descending": SortDesc,
	})
}

// ParseSplitStrategy accepts "short-axis", "ShortAxisSplit" and the like.
func ParseSplitStrategy(s string) (SplitStrategy, error) {
	return parseEnum("split strategy", s, splitStrategies, map[string]SplitStrategy{
		"shortaxissplit": SplitShortAxis,
		"longaxissplit":  SplitLongAxis,
	})
}

// ParseSelectionStrategy accepts "best-area-fit", "BEST_AREA_FIT", "baf" and
// the like.
func ParseSelectionStrategy(s string) (SelectionStrategy, error) {
	return parseEnum("selection strategy", s, selectionStrategies, map[string]SelectionStrategy{
		"baf":  SelectBestAreaFit,
		"bssf": SelectBestShortSideFit,
		"blsf": SelectBestLongSideFit,
	})
}

// PackConfig holds the engine settings for one packing run.
type PackConfig struct {
	KerfSize          float64           `json:"kerf_size"`          // Blade width lost at every cut, >= 0
	SortStrategy      SortStrategy      `json:"sort_strategy"`      // Empty means SortArea
	SortDirection     SortDirection     `json:"sort_direction"`     // Empty means SortAsc
	SplitStrategy     SplitStrategy     `json:"split_strategy"`     // Empty means SplitShortAxis
	SelectionStrategy SelectionStrategy `json:"selection_strategy"` // Empty means SelectBestAreaFit
	NoRotation        bool              `json:"no_rotation"`        // Disables rotation for every item; false defers to Item.LockRotation
}

// DefaultPackConfig returns the engine defaults: no kerf, area ascending,
// short axis split, best area fit, rotation allowed.
func DefaultPackConfig() PackConfig {
	return PackConfig{
		KerfSize:          0,
		SortStrategy:      SortArea,
		SortDirection:     SortAsc,
		SplitStrategy:     SplitShortAxis,
		SelectionStrategy: SelectBestAreaFit,
	}
}

// RotationAllowed reports whether the run may rotate items at all.
func (c PackConfig) RotationAllowed() bool { return !c.NoRotation }

// ValidKerf reports whether k is a usable kerf: finite and not negative.
func ValidKerf(k float64) bool {
	return k >= 0 && !math.IsInf(k, 1)
}

// ValidDimension reports whether d can be a bin or item side: finite and
// greater than zero.
func ValidDimension(d float64) bool {
	return d > 0 && !math.IsInf(d, 1)
}

// Normalized fills empty strategy fields with their defaults and folds
// alternate spellings into the canonical values. It returns an error for
// unknown names or a kerf that is negative, NaN or infinite.
func (c PackConfig) Normalized() (PackConfig, error) {
	var err error
	if !ValidKerf(c.KerfSize) {
		return c, fmt.Errorf("kerf size must be a finite number >= 0, got %g", c.KerfSize)
	}
	if c.SortStrategy == "" {
		c.SortStrategy = SortArea
	} else if c.SortStrategy, err = ParseSortStrategy(string(c.SortStrategy)); err != nil {
		return c, err
	}
	if c.SortDirection == "" {
		c.SortDirection = SortAsc
	} else if c.SortDirection, err = ParseSortDirection(string(c.SortDirection)); err != nil {
		return c, err
	}
	if c.SplitStrategy == "" {
		c.SplitStrategy = SplitShortAxis
	} else if c.SplitStrategy, err = ParseSplitStrategy(string(c.SplitStrategy)); err != nil {
		return c, err
	}
	if c.SelectionStrategy == "" {
		c.SelectionStrategy = SelectBestAreaFit
	} else if c.SelectionStrategy, err = ParseSelectionStrategy(string(c.SelectionStrategy)); err != nil {
		return c, err
	}
	return c, nil
}

// String renders the config compactly for logs and report headers.
func (c PackConfig) String() string {
	rot := "on"
	if c.NoRotation {
		rot = "off"
	}
	return fmt.Sprintf("sort=%s/%s split=%s select=%s kerf=%g rotation=%s",
		c.SortStrategy, c.SortDirection, c.SplitStrategy, c.SelectionStrategy, c.KerfSize, rot)
}
