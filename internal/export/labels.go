package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/guillocut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is the payload encoded into each label's QR code.
type LabelInfo struct {
	ItemID   string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width_mm"`
	Height   float64 `json:"height_mm"`
	Bin      int     `json:"bin"`
	X        float64 `json:"x_mm"`
	Y        float64 `json:"y_mm"`
	Rotated  bool    `json:"rotated"`
	Sequence int     `json:"seq"` // 1-based position in the cutting order
}

// Avery 5160 compatible sheet: 3 x 10 labels of 66.7 x 25.4 mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos lists one label per placement, bins in index order and
// placements in insertion order.
func CollectLabelInfos(result model.PackResult) []LabelInfo {
	var labels []LabelInfo
	for _, b := range result.Bins {
		for _, p := range b.Placements {
			labels = append(labels, LabelInfo{
				ItemID:   p.Item.ID,
				Name:     p.Item.Label(),
				Width:    p.Item.Width,
				Height:   p.Item.Height,
				Bin:      b.Index,
				X:        p.X,
				Y:        p.Y,
				Rotated:  p.Rotated,
				Sequence: len(labels) + 1,
			})
		}
	}
	return labels
}

// ExportLabels writes a label sheet with one QR-coded label per placed item.
func ExportLabels(path string, result model.PackResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no placed items to label")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, info := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		slot := i % labelsPerPage
		x := labelMarginLeft + float64(slot%labelCols)*labelWidth
		y := labelMarginTop + float64(slot/labelCols)*labelHeight

		if err := drawLabel(pdf, tr, x, y, info); err != nil {
			return fmt.Errorf("label for %q: %w", info.Name, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

func drawLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	img := fmt.Sprintf("qr_%d", info.Sequence)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(img, opts, bytes.NewReader(png))
	pdf.ImageOptions(img, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2,
		qrSize, qrSize, false, opts, 0, "")

	tx := x + labelPadding
	tw := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(tx, y+labelPadding)
	pdf.CellFormat(tw, 4.5, truncate(pdf, tr(info.Name), tw), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(tx, y+labelPadding+5)
	pdf.CellFormat(tw, 3.5, fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(tx, y+labelPadding+9)
	pdf.CellFormat(tw, 3, fmt.Sprintf("#%d  Bin %d @ (%.0f, %.0f)", info.Sequence, info.Bin, info.X, info.Y),
		"", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(tx, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(tw, 3, tr("Rotated 90°"), "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	return pdf.Error()
}

// truncate shortens s with an ellipsis until it fits width at the current
// font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
