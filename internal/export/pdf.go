// Package export writes packing results to PDF reports, label sheets, DXF
// drawings, Excel cut lists and JSON.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/guillocut/internal/model"
)

// rgb is a fill colour for one placed item.
type rgb struct {
	R, G, B int
}

// palette cycles through distinguishable part colours.
var palette = []rgb{
	{76, 175, 80},  // green
	{33, 150, 243}, // blue
	{255, 152, 0},  // orange
	{156, 39, 176}, // purple
	{0, 188, 212},  // cyan
	{244, 67, 54},  // red
	{255, 235, 59}, // yellow
	{121, 85, 72},  // brown
}

// A4 landscape, millimetres.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	margin       = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawTop      = margin + headerHeight + 5.0
)

// ReportOptions controls the parts of the PDF report besides the layouts.
type ReportOptions struct {
	Title     string           // Defaults to "Cutting Layout"
	Config    model.PackConfig // Printed on the summary page
	MinOffcut float64          // Minimum side of a highlighted offcut; 0 disables offcuts
}

// ExportPDF renders one page per bin followed by a summary page.
func ExportPDF(path string, result model.PackResult, opts ReportOptions) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}
	if opts.Title == "" {
		opts.Title = "Cutting Layout"
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(opts.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, b := range result.Bins {
		pdf.AddPage()
		binPage(pdf, tr, b, opts)
	}
	pdf.AddPage()
	summaryPage(pdf, tr, result, opts)

	return pdf.OutputFileAndClose(path)
}

func binPage(pdf *fpdf.Fpdf, tr func(string) string, b model.BinResult, opts ReportOptions) {
	usable := pageWidth - 2*margin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(usable, headerHeight,
		tr(fmt.Sprintf("%s - Bin %d (%.0f x %.0f mm)", opts.Title, b.Index, b.Width, b.Height)),
		"", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(margin, margin+headerHeight)
	pdf.CellFormat(usable, 5,
		fmt.Sprintf("Items: %d | Used: %.0f of %.0f sq mm | Efficiency: %.1f%%",
			len(b.Placements), b.UsedArea(), b.TotalArea(), b.Efficiency()),
		"", 0, "L", false, 0, "")

	drawH := pageHeight - drawTop - margin - legendHeight
	scale := math.Min(usable/b.Width, drawH/b.Height)
	canvasW, canvasH := b.Width*scale, b.Height*scale
	ox, oy := margin+(usable-canvasW)/2, drawTop

	// Stock
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(ox, oy, canvasW, canvasH, "FD")

	if opts.MinOffcut > 0 {
		for _, o := range model.DetectOffcuts(b, opts.MinOffcut) {
			x, y, w, h := ox+o.X*scale, oy+o.Y*scale, o.Width*scale, o.Height*scale
			pdf.SetFillColor(235, 235, 235)
			pdf.SetDrawColor(150, 150, 150)
			pdf.SetLineWidth(0.2)
			pdf.Rect(x, y, w, h, "FD")
			hatch(pdf, x, y, w, h)
		}
	}

	for i, p := range b.Placements {
		c := palette[i%len(palette)]
		x, y, w, h := ox+p.X*scale, oy+p.Y*scale, p.Width*scale, p.Height*scale

		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, w, h, "FD")

		if w <= 15 || h <= 8 {
			continue
		}
		pdf.SetFont("Helvetica", "", fontSizeFor(w, h))
		pdf.SetTextColor(0, 0, 0)
		name := tr(p.Item.Label())
		dims := fmt.Sprintf("%.0fx%.0f", p.Width, p.Height)
		if p.Rotated {
			dims += " R"
		}
		if nw := pdf.GetStringWidth(name); nw < w-2 {
			pdf.SetXY(x+(w-nw)/2, y+h/2-4)
			pdf.CellFormat(nw, 4, name, "", 0, "C", false, 0, "")
		}
		if dw := pdf.GetStringWidth(dims); h > 14 && dw < w-2 {
			pdf.SetXY(x+(w-dw)/2, y+h/2)
			pdf.CellFormat(dw, 4, dims, "", 0, "C", false, 0, "")
		}
	}

	annotate(pdf, b, ox, oy, canvasW, canvasH)
	legend(pdf, tr, b, oy+canvasH+5)
}

// hatch fills a rectangle with diagonal lines.
func hatch(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(170, 170, 170)
	pdf.SetLineWidth(0.15)
	const step = 4.0
	for d := step; d < w+h; d += step {
		pdf.Line(x+math.Max(0, d-h), y+math.Min(h, d), x+math.Min(w, d), y+math.Max(0, d-w))
	}
}

// annotate prints the bin width below and the height, rotated, to the left.
func annotate(pdf *fpdf.Fpdf, b model.BinResult, ox, oy, cw, ch float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	wl := fmt.Sprintf("%.0f mm", b.Width)
	ww := pdf.GetStringWidth(wl)
	pdf.SetXY(ox+(cw-ww)/2, oy+ch+1)
	pdf.CellFormat(ww, 4, wl, "", 0, "C", false, 0, "")

	hl := fmt.Sprintf("%.0f mm", b.Height)
	hw := pdf.GetStringWidth(hl)
	pdf.TransformBegin()
	pdf.TransformRotate(90, ox-3, oy+ch/2)
	pdf.SetXY(ox-3-hw/2, oy+ch/2-2)
	pdf.CellFormat(hw, 4, hl, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func legend(pdf *fpdf.Fpdf, tr func(string) string, b model.BinResult, y float64) {
	if len(b.Placements) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(margin, y)
	pdf.CellFormat(30, 4, "Items placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	x := margin + 32
	for i, p := range b.Placements {
		c := palette[i%len(palette)]
		text := tr(fmt.Sprintf("%s (%.0fx%.0f)", p.Item.Label(), p.Item.Width, p.Item.Height))
		if p.Rotated {
			text += " R"
		}
		tw := pdf.GetStringWidth(text) + 6
		if x+tw > pageWidth-margin {
			y += 5
			x = margin
		}
		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(tw-4, 4, text, "", 0, "L", false, 0, "")
		x += tw + 2
	}
}

func summaryPage(pdf *fpdf.Fpdf, tr func(string) string, result model.PackResult, opts ReportOptions) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageWidth-2*margin, 10, tr(opts.Title+" - Summary"), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(margin, margin+12, pageWidth-margin, margin+12)
	y := margin + 18

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(margin, y)
		pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
		y += 9
	}
	pairs := func(rows [][2]string) {
		for _, r := range rows {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetXY(margin+5, y)
			pdf.CellFormat(60, 6, r[0]+":", "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(60, 6, r[1], "", 0, "L", false, 0, "")
			y += 7
		}
	}

	section("Overall")
	overall := [][2]string{
		{"Bins used", fmt.Sprintf("%d", len(result.Bins))},
		{"Bin size", fmt.Sprintf("%.0f x %.0f mm", result.BinWidth, result.BinHeight)},
		{"Items placed", fmt.Sprintf("%d", result.PlacementCount())},
		{"Efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency())},
	}
	if opts.MinOffcut > 0 {
		offcuts := model.DetectAllOffcuts(result, opts.MinOffcut)
		overall = append(overall, [2]string{"Reusable offcuts",
			fmt.Sprintf("%d (%.0f sq mm)", len(offcuts), model.TotalOffcutArea(offcuts))})
	}
	pairs(overall)
	y += 5

	section("Bins")
	widths := []float64{20, 50, 40, 40, 60}
	headers := []string{"Bin", "Items", "Efficiency", "Free areas", "Used / Total"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := margin
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, b := range result.Bins {
		if y > pageHeight-margin-50 {
			pdf.AddPage()
			y = margin
		}
		row := []string{
			fmt.Sprintf("%d", b.Index),
			fmt.Sprintf("%d", len(b.Placements)),
			fmt.Sprintf("%.1f%%", b.Efficiency()),
			fmt.Sprintf("%d", len(b.FreeRects)),
			fmt.Sprintf("%.0f / %.0f", b.UsedArea(), b.TotalArea()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x = margin
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[j], 6, cell, "1", 0, "C", true, 0, "")
			x += widths[j]
		}
		y += 6
	}
	y += 8

	cfg := opts.Config
	if c, err := cfg.Normalized(); err == nil {
		cfg = c
	}
	rotation := "allowed"
	if cfg.NoRotation {
		rotation = "disabled"
	}
	section("Settings")
	pairs([][2]string{
		{"Kerf", fmt.Sprintf("%.1f mm", cfg.KerfSize)},
		{"Sort", fmt.Sprintf("%s, %s", cfg.SortStrategy, cfg.SortDirection)},
		{"Split", string(cfg.SplitStrategy)},
		{"Selection", string(cfg.SelectionStrategy)},
		{"Rotation", rotation},
	})

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(margin, pageHeight-margin)
	pdf.CellFormat(pageWidth-2*margin, 4, "Generated by guillocut", "", 0, "C", false, 0, "")
}

// fontSizeFor picks a label size that fits a w x h rectangle on the page.
func fontSizeFor(w, h float64) float64 {
	switch m := math.Min(w, h); {
	case m > 40:
		return 8
	case m > 20:
		return 7
	default:
		return 6
	}
}
