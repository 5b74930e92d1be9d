package model

import (
	"sort"
	"strconv"
)

// Offcut represents a usable rectangular remnant area left over after cutting.
type Offcut struct {
	ID       string  `json:"id"`
	BinIndex int     `json:"bin"` // 1-based index of the source bin
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Area returns the area of the offcut in square mm.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// Rect returns the offcut's rectangle in bin coordinates.
func (o Offcut) Rect() Rect {
	return Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// ToItem turns the offcut into an item so it can be fed back as stock
// elsewhere or listed alongside parts.
func (o Offcut) ToItem() Item {
	it := NewItem("Offcut bin "+strconv.Itoa(o.BinIndex), o.Width, o.Height)
	it.ID = o.ID
	return it
}

// MinOffcutDimension is the default minimum width or height (in mm) for a
// remnant to be considered a usable offcut. Remnants smaller than this are
// waste.
const MinOffcutDimension = 50.0

// DetectOffcuts returns the bin's free rectangles that are at least minDim on
// both sides, largest first, with IDs of the form "B<bin>-<rank>". The free
// rectangles come straight from the packer's registry, so they never overlap
// each other or any placement.
func DetectOffcuts(br BinResult, minDim float64) []Offcut {
	var offcuts []Offcut
	for _, r := range br.FreeRects {
		if r.Width < minDim || r.Height < minDim {
			continue
		}
		offcuts = append(offcuts, Offcut{
			BinIndex: br.Index,
			X:        r.X,
			Y:        r.Y,
			Width:    r.Width,
			Height:   r.Height,
		})
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	for i := range offcuts {
		offcuts[i].ID = "B" + strconv.Itoa(br.Index) + "-" + strconv.Itoa(i+1)
	}
	return offcuts
}

// DetectAllOffcuts finds offcuts across all bins in a packing result.
func DetectAllOffcuts(result PackResult, minDim float64) []Offcut {
	var all []Offcut
	for _, b := range result.Bins {
		all = append(all, DetectOffcuts(b, minDim)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in square mm.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
