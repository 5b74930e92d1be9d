package engine

import "github.com/piwi3910/guillocut/internal/model"

// freeRects is the registry of empty rectangles inside one bin. It is a flat
// slice with swap-remove deletion; slot order is the iteration order used for
// tie-breaking, so every mutation is deterministic.
type freeRects struct {
	rects []model.Rect
}

// newFreeRects creates a registry holding one rectangle spanning the bin.
func newFreeRects(width, height float64) *freeRects {
	return &freeRects{
		rects: []model.Rect{{X: 0, Y: 0, Width: width, Height: height}},
	}
}

func (fr *freeRects) len() int { return len(fr.rects) }

func (fr *freeRects) at(i int) model.Rect { return fr.rects[i] }

// add appends r to the registry.
func (fr *freeRects) add(r model.Rect) {
	fr.rects = append(fr.rects, r)
}

// removeAt retires the rectangle in slot i by moving the last rectangle into
// its place.
func (fr *freeRects) removeAt(i int) {
	last := len(fr.rects) - 1
	fr.rects[i] = fr.rects[last]
	fr.rects = fr.rects[:last]
}

// remove retires the first rectangle equal to r. It reports whether one was
// found.
func (fr *freeRects) remove(r model.Rect) bool {
	for i, cur := range fr.rects {
		if cur == r {
			fr.removeAt(i)
			return true
		}
	}
	return false
}

// pruneContained drops every rectangle that lies fully inside another one.
// Of two identical rectangles the earlier slot survives.
func (fr *freeRects) pruneContained() {
	if len(fr.rects) <= 1 {
		return
	}
	kept := make([]model.Rect, 0, len(fr.rects))
	for i, a := range fr.rects {
		contained := false
		for j, b := range fr.rects {
			if i == j || !b.Contains(a) {
				continue
			}
			if a == b && j > i {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	fr.rects = kept
}

// snapshot returns a copy of the current rectangles.
func (fr *freeRects) snapshot() []model.Rect {
	if len(fr.rects) == 0 {
		return nil
	}
	out := make([]model.Rect, len(fr.rects))
	copy(out, fr.rects)
	return out
}
