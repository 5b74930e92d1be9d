package engine

import (
	"cmp"
	"math"
	"slices"

	"github.com/piwi3910/guillocut/internal/model"
)

// itemCompare orders two items for a sort strategy in ascending sense.
type itemCompare func(a, b model.Item) int

func longSide(it model.Item) float64  { return math.Max(it.Width, it.Height) }
func shortSide(it model.Item) float64 { return math.Min(it.Width, it.Height) }

// sortComparators maps every sort strategy to its comparator. Keys always use
// the declared, unrotated dimensions.
var sortComparators = map[model.SortStrategy]itemCompare{
	model.SortArea: func(a, b model.Item) int {
		return cmp.Compare(a.Width*a.Height, b.Width*b.Height)
	},
	model.SortPerimeter: func(a, b model.Item) int {
		return cmp.Compare(2*(a.Width+a.Height), 2*(b.Width+b.Height))
	},
	model.SortLongSide: func(a, b model.Item) int {
		if c := cmp.Compare(longSide(a), longSide(b)); c != 0 {
			return c
		}
		return cmp.Compare(shortSide(a), shortSide(b))
	},
	model.SortShortSide: func(a, b model.Item) int {
		if c := cmp.Compare(shortSide(a), shortSide(b)); c != 0 {
			return c
		}
		return cmp.Compare(longSide(a), longSide(b))
	},
	model.SortDifferences: func(a, b model.Item) int {
		return cmp.Compare(math.Abs(a.Width-a.Height), math.Abs(b.Width-b.Height))
	},
	// Ratio runs inverted: the ascending direction yields the largest ratio
	// first. Existing cut lists depend on this order.
	model.SortRatio: func(a, b model.Item) int {
		return cmp.Compare(longSide(b)/shortSide(b), longSide(a)/shortSide(a))
	},
}

// comparatorFor resolves the comparator for a strategy and direction once per
// run.
func comparatorFor(strategy model.SortStrategy, dir model.SortDirection) (itemCompare, bool) {
	c, ok := sortComparators[strategy]
	if !ok {
		return nil, false
	}
	if dir == model.SortDesc {
		return func(a, b model.Item) int { return c(b, a) }, true
	}
	return c, true
}

// SortItems returns a stably sorted copy of items. The input slice is left
// untouched. Unknown strategies keep the original order.
func SortItems(items []model.Item, strategy model.SortStrategy, dir model.SortDirection) []model.Item {
	sorted := slices.Clone(items)
	c, ok := comparatorFor(strategy, dir)
	if !ok {
		return sorted
	}
	slices.SortStableFunc(sorted, c)
	return sorted
}
