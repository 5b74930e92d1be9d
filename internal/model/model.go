package model

import "github.com/google/uuid"

// Item is a rectangular piece that has to be cut from the bin stock.
// The engine never mutates an Item; rotation is chosen per placement.
type Item struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// LockRotation keeps the item in its given orientation. The zero value
	// lets the packer rotate it.
	LockRotation bool `json:"lock_rotation,omitempty"`
}

// NewItem returns an item with a generated ID and rotation allowed.
func NewItem(name string, w, h float64) Item {
	return Item{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  w,
		Height: h,
	}
}

// CanRotate reports whether the item may be turned 90 degrees.
func (it Item) CanRotate() bool { return !it.LockRotation }

// Label returns a human readable identifier for error messages and reports.
func (it Item) Label() string {
	if it.Name != "" {
		return it.Name
	}
	if it.ID != "" {
		return it.ID
	}
	return "unnamed item"
}

// Orientation is the placement-time choice of how an item is laid on the bin.
type Orientation int

const (
	Normal  Orientation = iota // Declared width along the bin's X axis
	Rotated                    // Turned 90°, width and height swapped
)

func (o Orientation) String() string {
	if o == Rotated {
		return "Rotated"
	}
	return "Normal"
}

// Dimensions returns the effective width and height of it in this orientation.
func (o Orientation) Dimensions(it Item) (w, h float64) {
	if o == Rotated {
		return it.Height, it.Width
	}
	return it.Width, it.Height
}

// Rect is an axis-aligned rectangle in bin-local coordinates. X and Y are the
// top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width*Height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether inner lies completely within r.
func (r Rect) Contains(inner Rect) bool {
	return r.X <= inner.X && r.Y <= inner.Y &&
		r.Right() >= inner.Right() && r.Bottom() >= inner.Bottom()
}

// Intersects reports whether r and o share interior area. Touching edges do
// not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Input is one packing job: the bin size and the items to place.
type Input struct {
	BinWidth  float64 `json:"bin_width"`
	BinHeight float64 `json:"bin_height"`
	Items     []Item  `json:"items"`
}

// Placement records where a single item ended up.
type Placement struct {
	Bin     int     `json:"bin"` // 1-based bin index
	Item    Item    `json:"item"`
	Width   float64 `json:"width"`  // Effective width after orientation
	Height  float64 `json:"height"` // Effective height after orientation
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"`
}

// Rect returns the area the placement occupies.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// BinResult is one opened bin with its placements in insertion order and the
// free rectangles left over when the run finished.
type BinResult struct {
	Index      int         `json:"index"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`
	FreeRects  []Rect      `json:"free_rects,omitempty"`
}

// UsedArea returns the total area covered by placed items.
func (br BinResult) UsedArea() float64 {
	var total float64
	for _, p := range br.Placements {
		total += p.Width * p.Height
	}
	return total
}

// TotalArea returns the bin area.
func (br BinResult) TotalArea() float64 {
	return br.Width * br.Height
}

// Efficiency returns the usage percentage.
func (br BinResult) Efficiency() float64 {
	ta := br.TotalArea()
	if ta == 0 {
		return 0
	}
	return (br.UsedArea() / ta) * 100.0
}

// PackResult holds the full solution, bins ordered by index.
type PackResult struct {
	BinWidth  float64     `json:"bin_width"`
	BinHeight float64     `json:"bin_height"`
	Bins      []BinResult `json:"bins"`
}

// Placements returns the placements grouped by bin.
func (pr PackResult) Placements() [][]Placement {
	out := make([][]Placement, len(pr.Bins))
	for i, b := range pr.Bins {
		out[i] = b.Placements
	}
	return out
}

// PlacementCount returns the number of placed items across all bins.
func (pr PackResult) PlacementCount() int {
	total := 0
	for _, b := range pr.Bins {
		total += len(b.Placements)
	}
	return total
}

// TotalEfficiency returns overall material usage percentage.
func (pr PackResult) TotalEfficiency() float64 {
	var usedArea, totalArea float64
	for _, b := range pr.Bins {
		usedArea += b.UsedArea()
		totalArea += b.TotalArea()
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}
