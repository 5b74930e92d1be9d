package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/piwi3910/guillocut/internal/engine"
	"github.com/piwi3910/guillocut/internal/export"
	"github.com/piwi3910/guillocut/internal/model"
	"github.com/piwi3910/guillocut/internal/project"
)

// runCLI executes the root command with settings files under dir and returns
// what it printed.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var stderr, stdout bytes.Buffer
	c := New(&stderr, LogInfo)
	c.ConfigPath = filepath.Join(dir, "config.json")
	c.StockPath = filepath.Join(dir, "stock.json")
	defer c.Close()

	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const cabinetJob = `name = "Cabinet"
bin_width = 1200
bin_height = 600
min_offcut = 50

[config]
kerf = 3

[[items]]
name = "Side"
width = 560
height = 300
quantity = 2

[[items]]
name = "Shelf"
width = 400
height = 280
quantity = 3
`

func TestPackCommandWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "cabinet.toml")
	writeFile(t, job, cabinetJob)

	out := func(name string) string { return filepath.Join(dir, name) }
	stdout, err := runCLI(t, dir, "pack", job,
		"--pdf", out("layout.pdf"),
		"--labels", out("labels.pdf"),
		"--dxf", out("layout.dxf"),
		"--xlsx", out("cutlist.xlsx"),
		"--json", out("result.json"),
	)
	if err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	if !strings.Contains(stdout, "Packing result") || !strings.Contains(stdout, "kerf=3") {
		t.Errorf("summary missing from output:\n%s", stdout)
	}

	for _, name := range []string{"layout.pdf", "labels.pdf", "layout.dxf", "cutlist.xlsx", "result.json"} {
		info, err := os.Stat(out(name))
		if err != nil || info.Size() == 0 {
			t.Errorf("%s was not written", name)
		}
	}

	data, err := os.ReadFile(out("result.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	placed := 0
	for _, b := range doc.Bins {
		placed += len(b)
	}
	if placed != 5 || doc.BinWidth != 1200 {
		t.Errorf("unexpected document: %d placements on %gx%g", placed, doc.BinWidth, doc.BinHeight)
	}

	cfg, err := project.LoadAppConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.RecentJobs) != 1 || filepath.Base(cfg.RecentJobs[0]) != "cabinet.toml" {
		t.Errorf("expected the job to be recorded, got %v", cfg.RecentJobs)
	}
}

func TestPackCommandItemsFileToStdout(t *testing.T) {
	dir := t.TempDir()
	items := filepath.Join(dir, "parts.csv")
	writeFile(t, items, "Name;Width;Height;Qty\nDoor;400;700;2\n")

	stdout, err := runCLI(t, dir, "pack", "--items", items, "--width", "1000", "--height", "800", "--json", "-")
	if err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stdout should hold only the JSON document: %v\n%s", err, stdout)
	}
	if doc.BinCount != 1 || len(doc.Bins[0]) != 2 {
		t.Errorf("expected both doors in one bin, got %+v", doc.Bins)
	}
}

func TestPackCommandOversized(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "pack", "--items", writeCSV(t, dir, "Big,500,50\n"), "--width", "100", "--height", "100")
	if !errors.Is(err, engine.ErrOversizedItem) {
		t.Errorf("expected ErrOversizedItem, got %v", err)
	}
}

func TestPackCommandNeedsBin(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, dir, "pack", "--items", writeCSV(t, dir, "A,10,10\n")); err == nil {
		t.Error("expected an error without a bin size or stock preset")
	}
}

func writeCSV(t *testing.T, dir, rows string) string {
	t.Helper()
	path := filepath.Join(dir, "items.csv")
	writeFile(t, path, "Name,Width,Height\n"+rows)
	return path
}

func TestJobFlagsOverrideJob(t *testing.T) {
	cmd := &cobra.Command{}
	var f jobFlags
	f.register(cmd)
	if err := cmd.Flags().Parse([]string{"--kerf", "0", "--stock", "MDF 1220", "--no-rotate"}); err != nil {
		t.Fatal(err)
	}

	three := 3.0
	job := project.Job{
		BinWidth: 100, BinHeight: 100,
		Config: &project.JobConfig{Kerf: &three, Sort: "perimeter"},
	}
	if err := f.apply(cmd, &job); err != nil {
		t.Fatal(err)
	}

	if job.BinWidth != 0 || job.Stock != "MDF 1220" {
		t.Errorf("--stock should replace the job's bin size, got %+v", job)
	}
	if *job.Config.Kerf != 0 {
		t.Errorf("--kerf 0 should override the job's kerf, got %g", *job.Config.Kerf)
	}
	if job.Config.Sort != "perimeter" {
		t.Error("flags that were not set must keep the job's value")
	}
	if job.Config.AllowRotation == nil || *job.Config.AllowRotation {
		t.Error("--no-rotate should disable rotation")
	}
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "cabinet.toml")
	writeFile(t, job, cabinetJob)

	stdout, err := runCLI(t, dir, "compare", job)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	for _, want := range []string{"Current Settings", "Split long-axis", "Best:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestComparisonRows(t *testing.T) {
	results := []engine.ComparisonResult{
		{Scenario: engine.ComparisonScenario{Name: "A"}, BinsUsed: 2, Placed: 5, WastePercent: 12.34},
		{Scenario: engine.ComparisonScenario{Name: "B"}, Err: errors.New("boom")},
	}
	rows := comparisonRows(results, 0)
	if rows[0][0] != iconSuccess || rows[0][2] != "2" || rows[0][4] != "12.3" {
		t.Errorf("unexpected row %v", rows[0])
	}
	if rows[1][0] != "" || rows[1][5] != "boom" {
		t.Errorf("unexpected row %v", rows[1])
	}
}

func TestStockCommands(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "stock", "add", "Birch 1500", "1500", "1500", "--material", "Plywood"); err != nil {
		t.Fatalf("stock add failed: %v", err)
	}
	stdout, err := runCLI(t, dir, "stock", "list")
	if err != nil {
		t.Fatalf("stock list failed: %v", err)
	}
	if !strings.Contains(stdout, "Birch 1500") || !strings.Contains(stdout, "Plywood") {
		t.Errorf("new preset missing from list:\n%s", stdout)
	}

	if _, err := runCLI(t, dir, "stock", "add", "Bad", "0", "10"); err == nil {
		t.Error("expected an error for a zero width")
	}
	if _, err := runCLI(t, dir, "stock", "remove", "Birch 1500"); err != nil {
		t.Fatalf("stock remove failed: %v", err)
	}
	if _, err := runCLI(t, dir, "stock", "remove", "Birch 1500"); err == nil {
		t.Error("removing a missing preset should fail")
	}

	job := filepath.Join(dir, "job.yaml")
	writeFile(t, job, "stock: Acrylic\nitems:\n  - {width: 100, height: 100}\n")
	stdout, err = runCLI(t, dir, "pack", job)
	if err != nil {
		t.Fatalf("pack with stock preset failed: %v", err)
	}
	if !strings.Contains(stdout, "600 x 400") {
		t.Errorf("expected the acrylic sheet size in the summary:\n%s", stdout)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "config", "set-kerf", "2.5"); err != nil {
		t.Fatalf("set-kerf failed: %v", err)
	}
	if _, err := runCLI(t, dir, "config", "set", "split", "LongAxisSplit"); err != nil {
		t.Fatalf("set split failed: %v", err)
	}
	if _, err := runCLI(t, dir, "config", "set", "colour", "red"); err == nil {
		t.Error("expected an error for an unknown key")
	}

	stdout, err := runCLI(t, dir, "config", "show")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(stdout, "2.5") || !strings.Contains(stdout, "long-axis") {
		t.Errorf("show should reflect the new defaults:\n%s", stdout)
	}
}

func TestConfigBackupRestore(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.json")

	if _, err := runCLI(t, dir, "config", "set-kerf", "4"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, dir, "config", "backup", backup); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if _, err := runCLI(t, dir, "config", "set-kerf", "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, dir, "config", "restore", backup); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	cfg, err := project.LoadAppConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultKerfSize != 4 {
		t.Errorf("expected the backed up kerf, got %g", cfg.DefaultKerfSize)
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
		check      func(model.AppConfig) bool
	}{
		{"kerf", "3", false, func(c model.AppConfig) bool { return c.DefaultKerfSize == 3 }},
		{"kerf", "-1", true, nil},
		{"kerf", "NaN", true, nil},
		{"kerf", "+Inf", true, nil},
		{"min-offcut", "Inf", true, nil},
		{"sort", "ratio", false, func(c model.AppConfig) bool { return c.DefaultSortStrategy == model.SortRatio }},
		{"direction", "descending", false, func(c model.AppConfig) bool { return c.DefaultSortDirection == model.SortDesc }},
		{"select", "bssf", false, func(c model.AppConfig) bool { return c.DefaultSelectionStrategy == model.SelectBestShortSideFit }},
		{"rotation", "false", false, func(c model.AppConfig) bool { return !c.DefaultAllowRotation }},
		{"rotation", "maybe", true, nil},
		{"stock", "MDF", false, func(c model.AppConfig) bool { return c.DefaultStock == "MDF" }},
		{"min-offcut", "80", false, func(c model.AppConfig) bool { return c.MinOffcutDimension == 80 }},
		{"sort", "random", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := model.DefaultAppConfig()
			err := setConfigValue(&cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setConfigValue error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("value not applied: %+v", cfg)
			}
		})
	}
}
