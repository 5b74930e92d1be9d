package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/guillocut/internal/engine"
	"github.com/piwi3910/guillocut/internal/export"
	"github.com/piwi3910/guillocut/internal/model"
	"github.com/piwi3910/guillocut/internal/project"
)

const maxRecentJobs = 10

// jobFlags are the flags shared by pack and compare. Flags that were set on
// the command line override the job file, which overrides the user config.
type jobFlags struct {
	width     float64
	height    float64
	stock     string
	items     string
	kerf      float64
	sort      string
	direction string
	split     string
	selection string
	noRotate  bool
	minOffcut float64
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.width, "width", 0, "bin width in mm")
	fs.Float64Var(&f.height, "height", 0, "bin height in mm")
	fs.StringVar(&f.stock, "stock", "", "stock preset name (see 'guillocut stock list')")
	fs.StringVar(&f.items, "items", "", "read items from a CSV, Excel or DXF file")
	fs.Float64Var(&f.kerf, "kerf", 0, "blade width in mm")
	fs.StringVar(&f.sort, "sort", "", "sort key: area, perimeter, long-side, short-side, differences, ratio")
	fs.StringVar(&f.direction, "direction", "", "sort direction: asc or desc")
	fs.StringVar(&f.split, "split", "", "split rule: short-axis or long-axis")
	fs.StringVar(&f.selection, "select", "", "fit score: best-area-fit, best-short-side-fit, best-long-side-fit")
	fs.BoolVar(&f.noRotate, "no-rotate", false, "never rotate items")
	fs.Float64Var(&f.minOffcut, "min-offcut", 0, "smallest side of a reported offcut in mm")
}

// apply copies the flags that were set onto job.
func (f *jobFlags) apply(cmd *cobra.Command, job *project.Job) error {
	changed := cmd.Flags().Changed

	if changed("width") || changed("height") {
		job.BinWidth, job.BinHeight, job.Stock = f.width, f.height, ""
	}
	if changed("stock") {
		job.Stock, job.BinWidth, job.BinHeight = f.stock, 0, 0
	}
	if changed("items") {
		abs, err := filepath.Abs(f.items)
		if err != nil {
			return err
		}
		job.ItemsFile = abs
	}
	if changed("min-offcut") {
		job.MinOffcut = f.minOffcut
	}

	if job.Config == nil {
		job.Config = &project.JobConfig{}
	}
	jc := job.Config
	if changed("kerf") {
		jc.Kerf = &f.kerf
	}
	if changed("sort") {
		jc.Sort = f.sort
	}
	if changed("direction") {
		jc.Direction = f.direction
	}
	if changed("split") {
		jc.Split = f.split
	}
	if changed("select") {
		jc.Select = f.selection
	}
	if f.noRotate {
		off := false
		jc.AllowRotation = &off
	}
	return nil
}

// resolveJob loads the optional job file, applies flags and resolves the
// result against the user's settings.
func (c *CLI) resolveJob(cmd *cobra.Command, args []string, f *jobFlags) (project.Resolved, model.AppConfig, error) {
	var job project.Job
	if len(args) == 1 {
		var err error
		if job, err = project.LoadJob(args[0]); err != nil {
			return project.Resolved{}, model.AppConfig{}, err
		}
	}
	if err := f.apply(cmd, &job); err != nil {
		return project.Resolved{}, model.AppConfig{}, err
	}

	cfg, stock, err := c.loadSettings()
	if err != nil {
		return project.Resolved{}, cfg, fmt.Errorf("load settings: %w", err)
	}
	res, err := job.Resolve(cfg, stock)
	if err != nil {
		return res, cfg, err
	}

	logger := loggerFromContext(cmd.Context())
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	logger.Debug("resolved job",
		"items", len(res.Input.Items),
		"bin", fmt.Sprintf("%gx%g", res.Input.BinWidth, res.Input.BinHeight),
		"config", res.Config)
	return res, cfg, nil
}

// outputFlags name the files pack writes. Empty means skip.
type outputFlags struct {
	pdf    string
	labels string
	dxf    string
	xlsx   string
	json   string
	title  string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&o.pdf, "pdf", "", "write the layout report to this PDF")
	fs.StringVar(&o.labels, "labels", "", "write QR part labels to this PDF")
	fs.StringVar(&o.dxf, "dxf", "", "write the layout to this DXF")
	fs.StringVar(&o.xlsx, "xlsx", "", "write the cut list to this Excel workbook")
	fs.StringVar(&o.json, "json", "", "write placements as JSON to this file, or - for stdout")
	fs.StringVar(&o.title, "title", "", "report title")
}

func (c *CLI) packCommand() *cobra.Command {
	var (
		flags jobFlags
		out   outputFlags
	)

	cmd := &cobra.Command{
		Use:   "pack [job-file]",
		Short: "Pack items onto stock sheets",
		Long: `Pack the items of a job file (JSON, TOML or YAML) or of an items list
given with --items, print a summary and write the requested reports.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			res, cfg, err := c.resolveJob(cmd, args, &flags)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			result, err := engine.Pack(res.Input, res.Config)
			if err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			prog.done(fmt.Sprintf("Packed %d items into %d bins", result.PlacementCount(), len(result.Bins)))
			if err := ctx.Err(); err != nil {
				return err
			}

			if out.title == "" && len(args) == 1 {
				out.title = jobTitle(args[0])
			}
			if out.json != "-" {
				printSummary(printer{cmd.OutOrStdout()}, result, res)
			}
			if err := c.writeOutputs(cmd, result, res, out); err != nil {
				return err
			}

			if len(args) == 1 {
				if abs, err := filepath.Abs(args[0]); err == nil {
					cfg.AddRecentJob(abs, maxRecentJobs)
					if err := project.SaveAppConfig(c.ConfigPath, cfg); err != nil {
						logger.Warn("could not record recent job", "err", err)
					}
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	out.register(cmd)
	return cmd
}

func jobTitle(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func printSummary(p printer, result model.PackResult, res project.Resolved) {
	p.title("Packing result")
	p.keyValue("Bin", fmt.Sprintf("%g x %g", result.BinWidth, result.BinHeight))
	p.keyValue("Items", fmt.Sprint(result.PlacementCount()))
	p.keyValue("Bins used", fmt.Sprint(len(result.Bins)))
	p.keyValue("Efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency()))
	p.keyValue("Settings", res.Config.String())
	for _, b := range result.Bins {
		p.detail("Bin %d: %d items, %.1f%% used", b.Index, len(b.Placements), b.Efficiency())
	}
	if res.MinOffcut > 0 {
		offcuts := model.DetectAllOffcuts(result, res.MinOffcut)
		p.keyValue("Offcuts", fmt.Sprintf("%d (%.0f mm²)", len(offcuts), model.TotalOffcutArea(offcuts)))
	}
}

// writeOutputs writes every requested report and lists the files written.
func (c *CLI) writeOutputs(cmd *cobra.Command, result model.PackResult, res project.Resolved, out outputFlags) error {
	p := printer{cmd.OutOrStdout()}
	logger := loggerFromContext(cmd.Context())

	steps := []struct {
		path  string
		write func(string) error
	}{
		{out.pdf, func(path string) error {
			return export.ExportPDF(path, result, export.ReportOptions{Title: out.title, Config: res.Config, MinOffcut: res.MinOffcut})
		}},
		{out.labels, func(path string) error { return export.ExportLabels(path, result) }},
		{out.dxf, func(path string) error {
			return export.ExportDXF(path, result, export.DXFOptions{MinOffcut: res.MinOffcut})
		}},
		{out.xlsx, func(path string) error { return export.ExportXLSX(path, result, res.MinOffcut) }},
		{out.json, func(path string) error { return writeJSONFile(cmd, path, result, res.MinOffcut) }},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := s.write(s.path); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		logger.Debug("wrote output", "path", s.path)
		if s.path != "-" {
			p.file(s.path)
		}
	}
	return nil
}

func writeJSONFile(cmd *cobra.Command, path string, result model.PackResult, minOffcut float64) error {
	if path == "-" {
		return export.WriteJSON(cmd.OutOrStdout(), result, minOffcut)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteJSON(f, result, minOffcut); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
