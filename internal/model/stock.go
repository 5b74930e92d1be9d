package model

import (
	"strings"

	"github.com/google/uuid"
)

// StockPreset represents a reusable bin (sheet stock) definition.
type StockPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Material string  `json:"material"`
}

// NewStockPreset creates a new StockPreset with a generated ID.
func NewStockPreset(name string, width, height float64, material string) StockPreset {
	return StockPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    width,
		Height:   height,
		Material: material,
	}
}

// Input builds a packing input for items on this stock size.
func (sp StockPreset) Input(items []Item) Input {
	return Input{BinWidth: sp.Width, BinHeight: sp.Height, Items: items}
}

// StockInventory holds the user's saved stock presets.
type StockInventory struct {
	Stocks []StockPreset `json:"stocks"`
}

// DefaultStockInventory returns an inventory populated with common sheet sizes.
func DefaultStockInventory() StockInventory {
	return StockInventory{
		Stocks: []StockPreset{
			NewStockPreset("Plywood 2440x1220 (8'x4')", 2440, 1220, "Plywood"),
			NewStockPreset("MDF 2440x1220 (8'x4')", 2440, 1220, "MDF"),
			NewStockPreset("MDF 1220x610 (4'x2')", 1220, 610, "MDF"),
			NewStockPreset("Plywood 1220x610 (4'x2')", 1220, 610, "Plywood"),
			NewStockPreset("Acrylic 600x400", 600, 400, "Acrylic"),
			NewStockPreset("Aluminium 600x300", 600, 300, "Aluminium"),
		},
	}
}

// Add appends a preset, replacing any existing preset with the same name.
func (inv *StockInventory) Add(sp StockPreset) {
	for i := range inv.Stocks {
		if strings.EqualFold(inv.Stocks[i].Name, sp.Name) {
			sp.ID = inv.Stocks[i].ID
			inv.Stocks[i] = sp
			return
		}
	}
	inv.Stocks = append(inv.Stocks, sp)
}

// Remove deletes the preset with the given name or ID. It reports whether
// anything was removed.
func (inv *StockInventory) Remove(nameOrID string) bool {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == nameOrID || strings.EqualFold(inv.Stocks[i].Name, nameOrID) {
			inv.Stocks = append(inv.Stocks[:i], inv.Stocks[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the preset matching an ID, an exact name (case-insensitive),
// or failing both a unique name prefix. Returns nil when nothing or more than
// one preset matches.
func (inv *StockInventory) Find(query string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == query || strings.EqualFold(inv.Stocks[i].Name, query) {
			return &inv.Stocks[i]
		}
	}
	var match *StockPreset
	q := strings.ToLower(query)
	for i := range inv.Stocks {
		if strings.HasPrefix(strings.ToLower(inv.Stocks[i].Name), q) {
			if match != nil {
				return nil
			}
			match = &inv.Stocks[i]
		}
	}
	return match
}

// Names returns the preset names in inventory order.
func (inv *StockInventory) Names() []string {
	names := make([]string, len(inv.Stocks))
	for i, s := range inv.Stocks {
		names[i] = s.Name
	}
	return names
}
