package export

import (
	"fmt"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names used in the workbook.
const (
	SheetCutList = "Cut List"
	SheetSummary = "Summary"
	SheetOffcuts = "Offcuts"
)

var cutListHeader = []interface{}{"Seq", "Bin", "ID", "Name", "Width", "Height", "X", "Y", "Rotated"}

// ExportXLSX writes a workbook with one row per placement, a per-bin summary
// and, when minOffcut is positive, the reusable offcuts.
func ExportXLSX(path string, result model.PackResult, minOffcut float64) error {
	f, err := buildWorkbook(result, minOffcut)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func buildWorkbook(result model.PackResult, minOffcut float64) (*excelize.File, error) {
	if len(result.Bins) == 0 {
		return nil, fmt.Errorf("no bins to export")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetCutList); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	rows := [][]interface{}{cutListHeader}
	for _, b := range result.Bins {
		for _, p := range b.Placements {
			rows = append(rows, []interface{}{
				len(rows), b.Index, p.Item.ID, p.Item.Label(),
				p.Width, p.Height, p.X, p.Y, p.Rotated,
			})
		}
	}
	if err := writeRows(f, SheetCutList, rows, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetPanes(SheetCutList, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]interface{}{{"Bin", "Width", "Height", "Items", "Used Area", "Efficiency %", "Free Rects"}}
	for _, b := range result.Bins {
		summary = append(summary, []interface{}{
			b.Index, b.Width, b.Height, len(b.Placements), b.UsedArea(), round1(b.Efficiency()), len(b.FreeRects),
		})
	}
	summary = append(summary, []interface{}{"Total", "", "", result.PlacementCount(), "", round1(result.TotalEfficiency()), ""})
	if err := newSheet(f, SheetSummary, summary, bold); err != nil {
		f.Close()
		return nil, err
	}

	if minOffcut > 0 {
		offcuts := [][]interface{}{{"Bin", "ID", "X", "Y", "Width", "Height", "Area"}}
		for _, o := range model.DetectAllOffcuts(result, minOffcut) {
			offcuts = append(offcuts, []interface{}{o.BinIndex, o.ID, o.X, o.Y, o.Width, o.Height, o.Area()})
		}
		if err := newSheet(f, SheetOffcuts, offcuts, bold); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func newSheet(f *excelize.File, name string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows, headerStyle)
}

// writeRows fills sheet from A1 and styles the first row as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "I", 12)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
