package engine

import "github.com/piwi3910/guillocut/internal/model"

// splitRule reports whether the L-shaped residual should be cut horizontally,
// i.e. the bottom strip spans the whole free rectangle width and the right
// strip is limited to the placed item's height. Otherwise the right strip
// spans the full height and the bottom strip is limited to the item's width.
type splitRule func(rightover, leftover float64) bool

var splitRules = map[model.SplitStrategy]splitRule{
	// The shorter residual side gets the short strip.
	model.SplitShortAxis: func(rightover, leftover float64) bool { return rightover <= leftover },
	model.SplitLongAxis:  func(rightover, leftover float64) bool { return rightover > leftover },
}

// split places an item of w x h at the top-left corner of free and returns
// the residual rectangles. Kerf is removed on the cut edges next to the item
// only; a residual that ends up with a non-positive side is dropped.
func split(free model.Rect, w, h, kerf float64, horizontal splitRule) []model.Rect {
	rightover := free.Width - w - kerf
	leftover := free.Height - h - kerf

	bottom := model.Rect{
		X:      free.X,
		Y:      free.Y + h + kerf,
		Height: leftover,
	}
	right := model.Rect{
		X:     free.X + w + kerf,
		Y:     free.Y,
		Width: rightover,
	}

	if horizontal(rightover, leftover) {
		bottom.Width = free.Width
		right.Height = h
	} else {
		bottom.Width = w
		right.Height = free.Height
	}

	out := make([]model.Rect, 0, 2)
	if bottom.Width > 0 && bottom.Height > 0 {
		out = append(out, bottom)
	}
	if right.Width > 0 && right.Height > 0 {
		out = append(out, right)
	}
	return out
}

// place retires the free rectangle in slot, registers the residuals of
// putting a w x h item into its corner and prunes contained rectangles.
func place(fr *freeRects, slot int, w, h, kerf float64, rule splitRule) model.Rect {
	free := fr.at(slot)
	fr.removeAt(slot)
	for _, r := range split(free, w, h, kerf, rule) {
		fr.add(r)
	}
	fr.pruneContained()
	return model.Rect{X: free.X, Y: free.Y, Width: w, Height: h}
}
