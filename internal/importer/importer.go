// Package importer reads item lists from CSV, Excel and DXF files. Header
// names are matched case-insensitively against a set of aliases, CSV
// delimiters are detected automatically, and row-level problems are collected
// instead of aborting the import.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/xuri/excelize/v2"
)

// MaxQuantity caps how many copies a single row may expand into.
const MaxQuantity = 10000

// ImportResult holds the items read from a file plus any row-level problems.
type ImportResult struct {
	Items    []model.Item
	Errors   []string
	Warnings []string
}

// Err folds the collected errors into one error, or returns nil.
func (r ImportResult) Err() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("import: %s", r.Errors[0])
	default:
		return fmt.Errorf("import: %s (and %d more)", r.Errors[0], len(r.Errors)-1)
	}
}

// ColumnMapping holds the index of each known column, -1 when absent.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
	Rotate   int
}

// positional is used when the first row carries no recognizable header.
var positional = ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, Rotate: 4}

func (m *ColumnMapping) slot(role string) *int {
	switch role {
	case "label":
		return &m.Label
	case "width":
		return &m.Width
	case "height":
		return &m.Height
	case "quantity":
		return &m.Quantity
	case "rotate":
		return &m.Rotate
	}
	return nil
}

// headerAliases lists the accepted lowercase spellings for each column.
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "part name", "description", "desc", "piece", "item", "id"},
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"rotate":   {"rotate", "rotation", "allow rotation", "allow_rotation", "can rotate", "rotatable"},
}

var aliasRole = func() map[string]string {
	m := make(map[string]string)
	for role, aliases := range headerAliases {
		for _, a := range aliases {
			m[a] = role
		}
	}
	return m
}()

// DetectColumns maps a header row to column indices. The second return value
// is false when no cell matched a known alias, in which case the positional
// layout label, width, height, quantity, rotate is returned.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1, Rotate: -1}
	found := false
	for i, cell := range row {
		role, ok := aliasRole[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}
		found = true
		if p := m.slot(role); *p == -1 {
			*p = i
		}
	}
	if !found {
		return positional, false
	}
	return m, true
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and pipe
// that splits the data into the most consistent multi-column rows.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 {
			continue
		}
		cols := len(records[0])
		if cols < 2 {
			continue
		}
		consistent := 0
		for _, rec := range records {
			if len(rec) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// ImportFile dispatches on the file extension: .csv and .txt are read as CSV,
// .xlsx and .xlsm as Excel and .dxf as drawing outlines.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm", ".xltx":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported item file type %q", filepath.Ext(path))}}
}

// ImportCSV reads items from a CSV file with automatic delimiter detection.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delim := DetectCSVDelimiter(data)
	if name, ok := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]; ok {
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	records, err := readCSV(bytes.NewReader(data), delim)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}, Warnings: warnings}
	}
	return importRows(records, "Line", warnings)
}

// ImportCSVFromReader reads items from r using a known delimiter.
func ImportCSVFromReader(r io.Reader, delim rune) ImportResult {
	records, err := readCSV(r, delim)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importRows(records, "Line", nil)
}

// ImportExcel reads items from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return importRows(rows, "Row", nil)
}

// importRows is shared by the CSV and Excel readers.
func importRows(rows [][]string, prefix string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	switch {
	case hasHeader:
		start = 1
		var missing []string
		if mapping.Width < 0 {
			missing = append(missing, "Width")
		}
		if mapping.Height < 0 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	case len(rows[0]) > 1 && !isNumber(cell(rows[0], 1)):
		// Unknown header names; skip the row and read positionally.
		start = 1
		result.Warnings = append(result.Warnings, "Unrecognized header row, using column order label, width, height, quantity, rotate")
	}

	rowCount := 0
	for i := start; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		rowCount++
		where := fmt.Sprintf("%s %d", prefix, i+1)
		items, warn, err := parseRow(rows[i], mapping, where, rowCount)
		if err != "" {
			result.Errors = append(result.Errors, err)
			continue
		}
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
		result.Items = append(result.Items, items...)
	}
	if rowCount == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}

// parseRow turns one row into quantity copies of the same item.
func parseRow(row []string, m ColumnMapping, where string, n int) ([]model.Item, string, string) {
	name := cell(row, m.Label)
	if name == "" {
		name = fmt.Sprintf("Item %d", n)
	}

	width, msg := parseDimension(row, m.Width, "width", where)
	if msg != "" {
		return nil, "", msg
	}
	height, msg := parseDimension(row, m.Height, "height", where)
	if msg != "" {
		return nil, "", msg
	}

	qty := 1
	if s := cell(row, m.Quantity); s != "" {
		q, err := strconv.Atoi(s)
		if err != nil {
			return nil, "", fmt.Sprintf("%s: Invalid quantity '%s'", where, s)
		}
		if q <= 0 || q > MaxQuantity {
			return nil, "", fmt.Sprintf("%s: Quantity must be between 1 and %d", where, MaxQuantity)
		}
		qty = q
	}

	rotate := true
	var warning string
	if s := cell(row, m.Rotate); s != "" {
		if v, ok := ParseBool(s); ok {
			rotate = v
		} else {
			warning = fmt.Sprintf("%s: Unknown rotation value '%s', allowing rotation", where, s)
		}
	}

	items := make([]model.Item, qty)
	for i := range items {
		items[i] = model.NewItem(name, width, height)
		items[i].LockRotation = !rotate
	}
	return items, warning, ""
}

func parseDimension(row []string, idx int, what, where string) (float64, string) {
	s := cell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", where, what)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", where, what, s)
	}
	if !(v > 0) {
		return 0, fmt.Sprintf("%s: %s must be positive", where, strings.ToUpper(what[:1])+what[1:])
	}
	return v, ""
}

// ParseBool accepts yes/no, y/n, true/false, 1/0 and on/off in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "on", "x":
		return true, true
	case "no", "n", "false", "f", "0", "off", "-":
		return false, true
	}
	return false, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
