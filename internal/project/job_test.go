package project

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/guillocut/internal/model"
)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }

func sampleJob() Job {
	return Job{
		Name:      "Bookshelf",
		BinWidth:  2440,
		BinHeight: 1220,
		MinOffcut: 100,
		Items: []JobItem{
			{Name: "Side", Width: 1800, Height: 300, Quantity: 2},
			{Name: "Shelf", Width: 760, Height: 280, Quantity: 5, AllowRotation: boolPtr(false)},
			{Width: 800, Height: 1800},
		},
		Config: &JobConfig{Kerf: floatPtr(3), Sort: "long-side", Direction: "desc", Select: "bssf"},
	}
}

func TestJobRoundTripAllFormats(t *testing.T) {
	for _, name := range []string{"job.json", "job.toml", "job.yaml", "job.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveJob(path, sampleJob()); err != nil {
				t.Fatalf("SaveJob failed: %v", err)
			}
			job, err := LoadJob(path)
			if err != nil {
				t.Fatalf("LoadJob failed: %v", err)
			}

			if job.Name != "Bookshelf" || job.BinWidth != 2440 || job.BinHeight != 1220 || job.MinOffcut != 100 {
				t.Errorf("header fields lost: %+v", job)
			}
			if len(job.Items) != 3 {
				t.Fatalf("expected 3 items, got %d", len(job.Items))
			}
			if job.Items[1].AllowRotation == nil || *job.Items[1].AllowRotation {
				t.Error("explicit allow_rotation=false was lost")
			}
			if job.Items[0].AllowRotation != nil {
				t.Error("absent allow_rotation should stay absent")
			}
			if job.Config == nil || job.Config.Kerf == nil || *job.Config.Kerf != 3 || job.Config.Select != "bssf" {
				t.Errorf("config block lost: %+v", job.Config)
			}
		})
	}
}

func TestLoadJobTOMLByHand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabinet.toml")
	src := `name = "Cabinet"
stock = "MDF 1220"

[config]
kerf = 2
split = "LongAxisSplit"

[[items]]
name = "Door"
width = 400
height = 700
quantity = 2

[[items]]
width = 300
height = 300
allow_rotation = false
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	res, err := job.Resolve(model.DefaultAppConfig(), model.DefaultStockInventory())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Input.BinWidth != 1220 || res.Input.BinHeight != 610 {
		t.Errorf("expected stock 1220x610, got %gx%g", res.Input.BinWidth, res.Input.BinHeight)
	}
	if len(res.Input.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Input.Items))
	}
	if res.Input.Items[2].Name != "Item 2" || res.Input.Items[2].CanRotate() {
		t.Errorf("unexpected last item %+v", res.Input.Items[2])
	}
	if res.Config.KerfSize != 2 || res.Config.SplitStrategy != model.SplitLongAxis {
		t.Errorf("job config not applied: %s", res.Config)
	}
}

func TestLoadJobRejectsUnknownKeys(t *testing.T) {
	cases := map[string]string{
		"job.json": `{"bin_width": 100, "bin_hieght": 100}`,
		"job.toml": "bin_width = 100\nbin_hieght = 100\n",
		"job.yaml": "bin_width: 100\nbin_hieght: 100\n",
	}
	for name, src := range cases {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadJob(path); err == nil {
			t.Errorf("%s: expected error for misspelled key", name)
		}
	}
}

func TestLoadJobUnsupportedExtension(t *testing.T) {
	if _, err := LoadJob("job.ini"); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported type error, got %v", err)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.DefaultKerfSize = 5
	cfg.DefaultSortDirection = model.SortDesc
	cfg.MinOffcutDimension = 75

	job := Job{BinWidth: 100, BinHeight: 100, Items: []JobItem{{Width: 10, Height: 10}}}
	res, err := job.Resolve(cfg, model.StockInventory{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Config.KerfSize != 5 || res.Config.SortDirection != model.SortDesc || res.MinOffcut != 75 {
		t.Errorf("app defaults not applied: %s offcut=%g", res.Config, res.MinOffcut)
	}

	job.Config = &JobConfig{Kerf: floatPtr(0), AllowRotation: boolPtr(false)}
	res, err = job.Resolve(cfg, model.StockInventory{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Config.KerfSize != 0 || res.Config.RotationAllowed() {
		t.Errorf("job config should override app defaults: %s", res.Config)
	}
	if res.Config.SortDirection != model.SortDesc {
		t.Error("fields the job leaves unset keep the app default")
	}
}

func TestResolveQuantityExpansion(t *testing.T) {
	job := sampleJob()
	res, err := job.Resolve(model.DefaultAppConfig(), model.StockInventory{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(res.Input.Items) != 8 {
		t.Fatalf("expected 2+5+1 items, got %d", len(res.Input.Items))
	}
	ids := map[string]bool{}
	for _, it := range res.Input.Items {
		ids[it.ID] = true
	}
	if len(ids) != 8 {
		t.Error("expanded copies need distinct IDs")
	}
	if res.Input.Items[7].Name != "Item 3" {
		t.Errorf("unnamed items are named by line, got %q", res.Input.Items[7].Name)
	}
}

func TestResolveItemsFile(t *testing.T) {
	dir := t.TempDir()
	csv := "Name,Width,Height,Qty\nLeg,50,700,4\n"
	if err := os.WriteFile(filepath.Join(dir, "parts.csv"), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	jobPath := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(jobPath, []byte("bin_width: 1000\nbin_height: 1000\nitems_file: parts.csv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadJob(jobPath)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	res, err := job.Resolve(model.DefaultAppConfig(), model.StockInventory{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(res.Input.Items) != 4 || res.Input.Items[0].Name != "Leg" {
		t.Errorf("expected 4 legs from the CSV, got %+v", res.Input.Items)
	}
}

func TestResolveErrors(t *testing.T) {
	items := []JobItem{{Width: 10, Height: 10}}
	cases := []struct {
		name string
		job  Job
	}{
		{"no bin", Job{Items: items}},
		{"half bin", Job{BinWidth: 100, Items: items}},
		{"unknown stock", Job{Stock: "Unobtainium", Items: items}},
		{"no items", Job{BinWidth: 100, BinHeight: 100}},
		{"negative quantity", Job{BinWidth: 100, BinHeight: 100, Items: []JobItem{{Width: 1, Height: 1, Quantity: -1}}}},
		{"bad sort", Job{BinWidth: 100, BinHeight: 100, Items: items, Config: &JobConfig{Sort: "random"}}},
		{"negative kerf", Job{BinWidth: 100, BinHeight: 100, Items: items, Config: &JobConfig{Kerf: floatPtr(-1)}}},
		{"NaN kerf", Job{BinWidth: 100, BinHeight: 100, Items: items, Config: &JobConfig{Kerf: floatPtr(math.NaN())}}},
		{"infinite kerf", Job{BinWidth: 100, BinHeight: 100, Items: items, Config: &JobConfig{Kerf: floatPtr(math.Inf(1))}}},
		{"missing items file", Job{BinWidth: 100, BinHeight: 100, ItemsFile: "/nonexistent/parts.csv"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.job.Resolve(model.DefaultAppConfig(), model.DefaultStockInventory()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolveDefaultStock(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.DefaultStock = "Acrylic"
	job := Job{Items: []JobItem{{Width: 10, Height: 10}}}

	res, err := job.Resolve(cfg, model.DefaultStockInventory())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Input.BinWidth != 600 || res.Input.BinHeight != 400 {
		t.Errorf("expected the default stock, got %gx%g", res.Input.BinWidth, res.Input.BinHeight)
	}
}
