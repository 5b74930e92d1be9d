package export

import (
	"fmt"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names.
const (
	LayerBins    = "BINS"
	LayerParts   = "PARTS"
	LayerOffcuts = "OFFCUTS"
	LayerText    = "TEXT"
)

// DXFOptions tunes the drawing layout.
type DXFOptions struct {
	Gap       float64 // Space between bins; defaults to a tenth of the bin width
	MinOffcut float64 // Minimum offcut side drawn on the OFFCUTS layer; 0 disables
	TextSize  float64 // Defaults to 2% of the bin height
}

// dxfWriter draws into a drawing and keeps the first error.
type dxfWriter struct {
	d   *drawing.Drawing
	err error
}

func (w *dxfWriter) layer(name string) {
	if w.err == nil {
		w.err = w.d.ChangeLayer(name)
	}
}

// rect draws r as four lines. bx offsets the bin horizontally and binH flips
// the Y axis, since DXF Y grows upwards.
func (w *dxfWriter) rect(r model.Rect, bx, binH float64) {
	x0, x1 := bx+r.X, bx+r.Right()
	y0, y1 := binH-r.Bottom(), binH-r.Y
	for _, l := range [][4]float64{
		{x0, y0, x1, y0},
		{x1, y0, x1, y1},
		{x1, y1, x0, y1},
		{x0, y1, x0, y0},
	} {
		if w.err != nil {
			return
		}
		_, w.err = w.d.Line(l[0], l[1], 0, l[2], l[3], 0)
	}
}

func (w *dxfWriter) text(s string, x, y, size float64) {
	if w.err == nil {
		_, w.err = w.d.Text(s, x, y, 0, size)
	}
}

// ExportDXF writes every bin side by side, left to right in index order, with
// bin outlines, placed parts, offcuts and labels on separate layers.
func ExportDXF(path string, result model.PackResult, opts DXFOptions) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}
	gap := opts.Gap
	if gap <= 0 {
		gap = result.BinWidth / 10
	}
	size := opts.TextSize
	if size <= 0 {
		size = result.BinHeight / 50
	}

	d := dxf.NewDrawing()
	w := &dxfWriter{d: d}
	for _, l := range []struct {
		name string
		c    color.ColorNumber
	}{
		{LayerBins, color.White},
		{LayerOffcuts, color.Yellow},
		{LayerText, color.Green},
		{LayerParts, color.Cyan},
	} {
		if _, err := d.AddLayer(l.name, l.c, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	for i, b := range result.Bins {
		bx := float64(i) * (b.Width + gap)

		w.layer(LayerBins)
		w.rect(model.Rect{Width: b.Width, Height: b.Height}, bx, b.Height)

		w.layer(LayerText)
		w.text(fmt.Sprintf("Bin %d (%.1f%%)", b.Index, b.Efficiency()), bx, b.Height+size, size)

		if opts.MinOffcut > 0 {
			w.layer(LayerOffcuts)
			for _, o := range model.DetectOffcuts(b, opts.MinOffcut) {
				w.rect(o.Rect(), bx, b.Height)
			}
		}

		w.layer(LayerParts)
		for _, p := range b.Placements {
			w.rect(p.Rect(), bx, b.Height)
		}

		w.layer(LayerText)
		for _, p := range b.Placements {
			if p.Width < 4*size || p.Height < 2*size {
				continue
			}
			w.text(p.Item.Label(), bx+p.X+size/2, b.Height-p.Y-1.5*size, size)
		}
	}
	if w.err != nil {
		return fmt.Errorf("draw DXF: %w", w.err)
	}
	return d.SaveAs(path)
}
