package engine

import (
	"fmt"

	"github.com/piwi3910/guillocut/internal/model"
)

// Packer runs the guillotine bin-packing algorithm. A Packer holds no state
// between runs and may be reused; independent runs share nothing.
type Packer struct {
	Config model.PackConfig
}

func New(cfg model.PackConfig) *Packer {
	return &Packer{Config: cfg}
}

// Pack is shorthand for New(cfg).Pack(in).
func Pack(in model.Input, cfg model.PackConfig) (model.PackResult, error) {
	return New(cfg).Pack(in)
}

// strategies holds the behaviours resolved from the config for one run.
type strategies struct {
	compare itemCompare
	score   scoreFunc
	split   splitRule
}

func resolve(cfg model.PackConfig) (strategies, error) {
	var s strategies
	var ok bool
	if s.compare, ok = comparatorFor(cfg.SortStrategy, cfg.SortDirection); !ok {
		return s, fmt.Errorf("%w: unknown sort strategy %q", ErrInvalidConfig, cfg.SortStrategy)
	}
	if s.score, ok = selectionScores[cfg.SelectionStrategy]; !ok {
		return s, fmt.Errorf("%w: unknown selection strategy %q", ErrInvalidConfig, cfg.SelectionStrategy)
	}
	if s.split, ok = splitRules[cfg.SplitStrategy]; !ok {
		return s, fmt.Errorf("%w: unknown split strategy %q", ErrInvalidConfig, cfg.SplitStrategy)
	}
	return s, nil
}

// Pack places every item of in and returns the placements grouped by bin.
// Every item is validated before any placement is made; an item that fits
// the bin in no allowed orientation fails the whole run with an
// *OversizedItemError and no result.
func (p *Packer) Pack(in model.Input) (model.PackResult, error) {
	cfg, err := p.Config.Normalized()
	if err != nil {
		return model.PackResult{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	strat, err := resolve(cfg)
	if err != nil {
		return model.PackResult{}, err
	}
	if !model.ValidDimension(in.BinWidth) || !model.ValidDimension(in.BinHeight) {
		return model.PackResult{}, fmt.Errorf("%w: %g x %g", ErrInvalidBin, in.BinWidth, in.BinHeight)
	}
	if err := ValidateItems(in, cfg.RotationAllowed()); err != nil {
		return model.PackResult{}, err
	}

	sorted := SortItems(in.Items, cfg.SortStrategy, cfg.SortDirection)
	manager := newBinManager(in.BinWidth, in.BinHeight)

	for _, it := range sorted {
		c, ok := selectPlacement(it, manager.bins, cfg.RotationAllowed(), strat.score)
		if !ok {
			fresh := manager.open()
			c, ok = selectPlacement(it, []*bin{fresh}, cfg.RotationAllowed(), strat.score)
			if !ok {
				// Unreachable after validation.
				return model.PackResult{}, &OversizedItemError{Item: it, Index: -1, BinWidth: in.BinWidth, BinHeight: in.BinHeight}
			}
		}
		r := place(c.bin.free, c.slot, c.width, c.height, cfg.KerfSize, strat.split)
		c.bin.record(it, r, c.orientation)
	}

	return model.PackResult{
		BinWidth:  in.BinWidth,
		BinHeight: in.BinHeight,
		Bins:      manager.results(),
	}, nil
}

// ValidateItems checks that every item has finite positive dimensions and fits an
// empty bin in at least one allowed orientation. It returns the first
// offending item as an *OversizedItemError.
func ValidateItems(in model.Input, allowRotation bool) error {
	for i, it := range in.Items {
		if !model.ValidDimension(it.Width) || !model.ValidDimension(it.Height) {
			return &OversizedItemError{Item: it, Index: i, BinWidth: in.BinWidth, BinHeight: in.BinHeight, Malformed: true}
		}
		normal := it.Width <= in.BinWidth && it.Height <= in.BinHeight
		rotated := allowRotation && it.CanRotate() && it.Height <= in.BinWidth && it.Width <= in.BinHeight
		if !normal && !rotated {
			return &OversizedItemError{Item: it, Index: i, BinWidth: in.BinWidth, BinHeight: in.BinHeight}
		}
	}
	return nil
}
