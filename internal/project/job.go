package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/guillocut/internal/importer"
	"github.com/piwi3910/guillocut/internal/model"
)

// JobItem is one line of a job's parts list.
type JobItem struct {
	Name          string  `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Width         float64 `json:"width" toml:"width" yaml:"width"`
	Height        float64 `json:"height" toml:"height" yaml:"height"`
	Quantity      int     `json:"quantity,omitempty" toml:"quantity,omitempty" yaml:"quantity,omitempty"` // 0 means 1
	AllowRotation *bool   `json:"allow_rotation,omitempty" toml:"allow_rotation,omitempty" yaml:"allow_rotation,omitempty"`
}

// JobConfig overrides engine settings for a job. Unset fields fall back to
// the user's AppConfig.
type JobConfig struct {
	Kerf          *float64 `json:"kerf,omitempty" toml:"kerf,omitempty" yaml:"kerf,omitempty"`
	Sort          string   `json:"sort,omitempty" toml:"sort,omitempty" yaml:"sort,omitempty"`
	Direction     string   `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	Split         string   `json:"split,omitempty" toml:"split,omitempty" yaml:"split,omitempty"`
	Select        string   `json:"select,omitempty" toml:"select,omitempty" yaml:"select,omitempty"`
	AllowRotation *bool    `json:"allow_rotation,omitempty" toml:"allow_rotation,omitempty" yaml:"allow_rotation,omitempty"`
}

// Job is a saved packing job: the stock to cut from, the parts and
// optionally the engine settings.
type Job struct {
	Name      string     `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	BinWidth  float64    `json:"bin_width,omitempty" toml:"bin_width,omitempty" yaml:"bin_width,omitempty"`
	BinHeight float64    `json:"bin_height,omitempty" toml:"bin_height,omitempty" yaml:"bin_height,omitempty"`
	// Stock preset name, used when no bin size is given
	Stock string `json:"stock,omitempty" toml:"stock,omitempty" yaml:"stock,omitempty"`
	// CSV, Excel or DXF parts list, relative to the job file
	ItemsFile string     `json:"items_file,omitempty" toml:"items_file,omitempty" yaml:"items_file,omitempty"`
	MinOffcut float64    `json:"min_offcut,omitempty" toml:"min_offcut,omitempty" yaml:"min_offcut,omitempty"`
	Items     []JobItem  `json:"items,omitempty" toml:"items,omitempty" yaml:"items,omitempty"`
	Config    *JobConfig `json:"config,omitempty" toml:"config,omitempty" yaml:"config,omitempty"`

	dir string // directory of the file the job was loaded from
}

type jobFormat int

const (
	formatJSON jobFormat = iota
	formatTOML
	formatYAML
)

func formatFor(path string) (jobFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("unsupported job file type %q (want .json, .toml, .yaml or .yml)", filepath.Ext(path))
}

// LoadJob reads a job file, picking the decoder by extension. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func LoadJob(path string) (Job, error) {
	format, err := formatFor(path)
	if err != nil {
		return Job{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}

	var job Job
	switch format {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&job)
	case formatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &job)
		if err == nil {
			if keys := md.Undecoded(); len(keys) > 0 {
				err = fmt.Errorf("unknown key %q", keys[0].String())
			}
		}
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&job)
	}
	if err != nil {
		return Job{}, fmt.Errorf("parse job %s: %w", path, err)
	}
	job.dir = filepath.Dir(path)
	return job, nil
}

// SaveJob writes job to path in the format implied by the extension.
func SaveJob(path string, job Job) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case formatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(job)
	case formatTOML:
		err = toml.NewEncoder(&buf).Encode(job)
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(job); err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Resolved is a job turned into engine input.
type Resolved struct {
	Input     model.Input
	Config    model.PackConfig
	MinOffcut float64
	Warnings  []string // Non-fatal problems from the items file
}

// Resolve builds the engine input for the job. Settings come from cfg and are
// then overridden by the job's own config block. The bin size comes from the
// job, then the job's stock preset, then cfg.DefaultStock.
func (j Job) Resolve(cfg model.AppConfig, stock model.StockInventory) (Resolved, error) {
	var res Resolved

	pc := model.DefaultPackConfig()
	cfg.ApplyToConfig(&pc)
	if err := j.Config.apply(&pc); err != nil {
		return res, err
	}
	res.Config = pc

	res.MinOffcut = cfg.MinOffcutDimension
	if j.MinOffcut > 0 {
		res.MinOffcut = j.MinOffcut
	}

	w, h, err := j.binSize(cfg, stock)
	if err != nil {
		return res, err
	}
	res.Input.BinWidth, res.Input.BinHeight = w, h

	for i, ji := range j.Items {
		items, err := ji.expand(i + 1)
		if err != nil {
			return res, err
		}
		res.Input.Items = append(res.Input.Items, items...)
	}

	if j.ItemsFile != "" {
		path := j.ItemsFile
		if !filepath.IsAbs(path) && j.dir != "" {
			path = filepath.Join(j.dir, path)
		}
		imp := importer.ImportFile(path)
		if err := imp.Err(); err != nil {
			return res, fmt.Errorf("%s: %w", j.ItemsFile, err)
		}
		res.Input.Items = append(res.Input.Items, imp.Items...)
		res.Warnings = imp.Warnings
	}
	if len(res.Input.Items) == 0 {
		return res, fmt.Errorf("job has no items")
	}
	return res, nil
}

func (j Job) binSize(cfg model.AppConfig, stock model.StockInventory) (float64, float64, error) {
	if j.BinWidth > 0 || j.BinHeight > 0 {
		if j.BinWidth <= 0 || j.BinHeight <= 0 {
			return 0, 0, fmt.Errorf("bin size %gx%g: both sides must be positive", j.BinWidth, j.BinHeight)
		}
		return j.BinWidth, j.BinHeight, nil
	}
	name := j.Stock
	if name == "" {
		name = cfg.DefaultStock
	}
	if name == "" {
		return 0, 0, fmt.Errorf("job sets neither a bin size nor a stock preset")
	}
	sp := stock.Find(name)
	if sp == nil {
		return 0, 0, fmt.Errorf("stock preset %q not found or ambiguous", name)
	}
	return sp.Width, sp.Height, nil
}

func (ji JobItem) expand(line int) ([]model.Item, error) {
	qty := ji.Quantity
	switch {
	case qty < 0:
		return nil, fmt.Errorf("item %d: quantity must not be negative", line)
	case qty == 0:
		qty = 1
	case qty > importer.MaxQuantity:
		return nil, fmt.Errorf("item %d: quantity %d exceeds %d", line, qty, importer.MaxQuantity)
	}
	name := ji.Name
	if name == "" {
		name = fmt.Sprintf("Item %d", line)
	}
	items := make([]model.Item, qty)
	for k := range items {
		it := model.NewItem(name, ji.Width, ji.Height)
		if ji.AllowRotation != nil {
			it.LockRotation = !*ji.AllowRotation
		}
		items[k] = it
	}
	return items, nil
}

// apply overrides pc with the fields set in c. A nil JobConfig changes
// nothing.
func (c *JobConfig) apply(pc *model.PackConfig) error {
	if c == nil {
		return nil
	}
	var err error
	if c.Kerf != nil {
		if !model.ValidKerf(*c.Kerf) {
			return fmt.Errorf("kerf must be a finite number >= 0, got %g", *c.Kerf)
		}
		pc.KerfSize = *c.Kerf
	}
	if c.Sort != "" {
		if pc.SortStrategy, err = model.ParseSortStrategy(c.Sort); err != nil {
			return err
		}
	}
	if c.Direction != "" {
		if pc.SortDirection, err = model.ParseSortDirection(c.Direction); err != nil {
			return err
		}
	}
	if c.Split != "" {
		if pc.SplitStrategy, err = model.ParseSplitStrategy(c.Split); err != nil {
			return err
		}
	}
	if c.Select != "" {
		if pc.SelectionStrategy, err = model.ParseSelectionStrategy(c.Select); err != nil {
			return err
		}
	}
	if c.AllowRotation != nil {
		pc.NoRotation = !*c.AllowRotation
	}
	return nil
}
