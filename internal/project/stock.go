package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/guillocut/internal/model"
)

// DefaultStockPath returns ~/.guillocut/stock.json.
func DefaultStockPath() string {
	return filepath.Join(DefaultConfigDir(), "stock.json")
}

// SaveStockPresets writes the stock inventory to path as JSON.
func SaveStockPresets(path string, inv model.StockInventory) error {
	return writeJSON(path, inv)
}

// LoadStockPresets reads the stock inventory from path. A missing file yields
// the default inventory, which is written out so later edits have a file to
// start from.
func LoadStockPresets(path string) (model.StockInventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultStockInventory()
			return inv, SaveStockPresets(path, inv)
		}
		return model.StockInventory{}, err
	}
	var inv model.StockInventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.StockInventory{}, err
	}
	return inv, nil
}

// ImportStockPresets merges presets from a JSON file into existing. Presets
// with a name already present replace the old entry.
func ImportStockPresets(path string, existing model.StockInventory) (model.StockInventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.StockInventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}
	for _, sp := range imported.Stocks {
		existing.Add(sp)
	}
	return existing, nil
}
