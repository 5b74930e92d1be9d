package engine

import (
	"math"

	"github.com/piwi3910/guillocut/internal/model"
)

// scoreFunc rates placing a w x h piece into free. Lower is better.
type scoreFunc func(w, h float64, free model.Rect) float64

func scoreBestArea(w, h float64, free model.Rect) float64 {
	return free.Width*free.Height - w*h
}

func scoreBestShortSide(w, h float64, free model.Rect) float64 {
	return math.Min(free.Width-w, free.Height-h)
}

func scoreBestLongSide(w, h float64, free model.Rect) float64 {
	return math.Max(free.Width-w, free.Height-h)
}

var selectionScores = map[model.SelectionStrategy]scoreFunc{
	model.SelectBestAreaFit:      scoreBestArea,
	model.SelectBestShortSideFit: scoreBestShortSide,
	model.SelectBestLongSideFit:  scoreBestLongSide,
}

// candidate is one feasible (bin, free rectangle, orientation) triple.
type candidate struct {
	bin         *bin
	slot        int
	orientation model.Orientation
	width       float64
	height      float64
	score       float64
}

// fits reports whether a w x h piece fits inside free.
func fits(w, h float64, free model.Rect) bool {
	return w <= free.Width && h <= free.Height
}

// orientations lists the orientations to test for it. Rotated is only
// offered when both the item and the run allow it and it changes the shape.
func orientations(it model.Item, allowRotation bool) []model.Orientation {
	if allowRotation && it.CanRotate() && it.Width != it.Height {
		return []model.Orientation{model.Normal, model.Rotated}
	}
	return []model.Orientation{model.Normal}
}

// selectPlacement scans every free rectangle of every bin and returns the
// candidate with the lowest score. Ties keep the earlier bin, then the earlier
// registry slot, then Normal over Rotated.
func selectPlacement(it model.Item, bins []*bin, allowRotation bool, score scoreFunc) (candidate, bool) {
	var best candidate
	found := false
	orients := orientations(it, allowRotation)

	for _, b := range bins {
		for slot := 0; slot < b.free.len(); slot++ {
			free := b.free.at(slot)
			for _, o := range orients {
				w, h := o.Dimensions(it)
				if !fits(w, h, free) {
					continue
				}
				s := score(w, h, free)
				if !found || s < best.score {
					best = candidate{bin: b, slot: slot, orientation: o, width: w, height: h, score: s}
					found = true
				}
			}
		}
	}
	return best, found
}
