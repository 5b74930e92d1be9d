package engine

import "github.com/piwi3910/guillocut/internal/model"

// bin is one opened piece of stock during a run.
type bin struct {
	index      int // 1-based, creation order
	width      float64
	height     float64
	free       *freeRects
	placements []model.Placement
}

// record appends a placement for it at r.
func (b *bin) record(it model.Item, r model.Rect, o model.Orientation) {
	b.placements = append(b.placements, model.Placement{
		Bin:     b.index,
		Item:    it,
		Width:   r.Width,
		Height:  r.Height,
		X:       r.X,
		Y:       r.Y,
		Rotated: o == model.Rotated,
	})
}

// binManager owns the ordered list of open bins for a single run.
type binManager struct {
	width  float64
	height float64
	bins   []*bin
}

func newBinManager(width, height float64) *binManager {
	return &binManager{width: width, height: height}
}

// open appends a fresh bin with one free rectangle covering it.
func (m *binManager) open() *bin {
	b := &bin{
		index:  len(m.bins) + 1,
		width:  m.width,
		height: m.height,
		free:   newFreeRects(m.width, m.height),
	}
	m.bins = append(m.bins, b)
	return b
}

// results converts the open bins into immutable output, ordered by index.
func (m *binManager) results() []model.BinResult {
	out := make([]model.BinResult, 0, len(m.bins))
	for _, b := range m.bins {
		placements := make([]model.Placement, len(b.placements))
		copy(placements, b.placements)
		out = append(out, model.BinResult{
			Index:      b.index,
			Width:      b.width,
			Height:     b.height,
			Placements: placements,
			FreeRects:  b.free.snapshot(),
		})
	}
	return out
}
