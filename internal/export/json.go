package export

import (
	"encoding/json"
	"io"

	"github.com/piwi3910/guillocut/internal/model"
)

// ItemRef carries only the identity fields of a placed item.
type ItemRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// PlacementRecord is the machine-readable form of one placement.
type PlacementRecord struct {
	Bin     int     `json:"bin"`
	Item    ItemRef `json:"item"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"`
}

// Document is the JSON layout shared by the CLI and the HTTP service.
type Document struct {
	BinWidth   float64             `json:"bin_width"`
	BinHeight  float64             `json:"bin_height"`
	BinCount   int                 `json:"bin_count"`
	Efficiency float64             `json:"efficiency"`
	Bins       [][]PlacementRecord `json:"bins"`
	Offcuts    []model.Offcut      `json:"offcuts,omitempty"`
}

// Records converts placements to records, grouped by bin in index order.
func Records(result model.PackResult) [][]PlacementRecord {
	out := make([][]PlacementRecord, len(result.Bins))
	for i, b := range result.Bins {
		recs := make([]PlacementRecord, len(b.Placements))
		for j, p := range b.Placements {
			recs[j] = PlacementRecord{
				Bin:     p.Bin,
				Item:    ItemRef{ID: p.Item.ID, Name: p.Item.Name},
				Width:   p.Width,
				Height:  p.Height,
				X:       p.X,
				Y:       p.Y,
				Rotated: p.Rotated,
			}
		}
		out[i] = recs
	}
	return out
}

// NewDocument builds the JSON document for result. Offcuts are listed when
// minOffcut is positive.
func NewDocument(result model.PackResult, minOffcut float64) Document {
	doc := Document{
		BinWidth:   result.BinWidth,
		BinHeight:  result.BinHeight,
		BinCount:   len(result.Bins),
		Efficiency: round1(result.TotalEfficiency()),
		Bins:       Records(result),
	}
	if minOffcut > 0 {
		doc.Offcuts = model.DetectAllOffcuts(result, minOffcut)
	}
	return doc
}

// WriteJSON writes the document for result as indented JSON.
func WriteJSON(w io.Writer, result model.PackResult, minOffcut float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(result, minOffcut))
}
