package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/piwi3910/guillocut/internal/project"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit user defaults",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configSetKerfCommand())
	cmd.AddCommand(c.configSetCommand())
	cmd.AddCommand(c.configBackupCommand())
	cmd.AddCommand(c.configRestoreCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the user defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			p := printer{cmd.OutOrStdout()}
			p.title("Defaults")
			p.keyValue("File", c.ConfigPath)
			p.keyValue("Kerf", fmt.Sprintf("%g", cfg.DefaultKerfSize))
			p.keyValue("Sort", fmt.Sprintf("%s %s", cfg.DefaultSortStrategy, cfg.DefaultSortDirection))
			p.keyValue("Split", string(cfg.DefaultSplitStrategy))
			p.keyValue("Select", string(cfg.DefaultSelectionStrategy))
			p.keyValue("Rotation", strconv.FormatBool(cfg.DefaultAllowRotation))
			p.keyValue("Stock", cfg.DefaultStock)
			p.keyValue("Min offcut", fmt.Sprintf("%g", cfg.MinOffcutDimension))
			for _, j := range cfg.RecentJobs {
				p.detail("recent: %s", j)
			}
			return nil
		},
	}
}

func (c *CLI) configSetKerfCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-kerf <mm>",
		Short: "Set the default blade width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setConfig(cmd, "kerf", args[0])
		},
	}
}

func (c *CLI) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a default",
		Long: `Set a default. Keys: kerf, sort, direction, split, select, rotation,
stock, min-offcut.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setConfig(cmd, args[0], args[1])
		},
	}
}

func (c *CLI) setConfig(cmd *cobra.Command, key, value string) error {
	cfg, err := project.LoadAppConfig(c.ConfigPath)
	if err != nil {
		return err
	}
	if err := setConfigValue(&cfg, key, value); err != nil {
		return err
	}
	if err := project.SaveAppConfig(c.ConfigPath, cfg); err != nil {
		return err
	}
	printer{cmd.OutOrStdout()}.success("Set %s to %s", key, value)
	return nil
}

// setConfigValue parses value for key and stores it in cfg.
func setConfigValue(cfg *model.AppConfig, key, value string) error {
	var err error
	switch key {
	case "kerf":
		var v float64
		if v, err = strconv.ParseFloat(value, 64); err != nil || !model.ValidKerf(v) {
			return fmt.Errorf("kerf must be a finite non-negative number, got %q", value)
		}
		cfg.DefaultKerfSize = v
	case "sort":
		cfg.DefaultSortStrategy, err = model.ParseSortStrategy(value)
	case "direction":
		cfg.DefaultSortDirection, err = model.ParseSortDirection(value)
	case "split":
		cfg.DefaultSplitStrategy, err = model.ParseSplitStrategy(value)
	case "select":
		cfg.DefaultSelectionStrategy, err = model.ParseSelectionStrategy(value)
	case "rotation":
		cfg.DefaultAllowRotation, err = strconv.ParseBool(value)
	case "stock":
		cfg.DefaultStock = value
	case "min-offcut":
		var v float64
		if v, err = strconv.ParseFloat(value, 64); err != nil || !model.ValidKerf(v) {
			return fmt.Errorf("min-offcut must be a finite non-negative number, got %q", value)
		}
		cfg.MinOffcutDimension = v
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return err
}

func (c *CLI) configBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Write config and stock presets to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stock, err := c.loadSettings()
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], cfg, stock); err != nil {
				return err
			}
			p := printer{cmd.OutOrStdout()}
			p.success("Backed up settings")
			p.file(args[0])
			return nil
		},
	}
}

func (c *CLI) configRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace config and stock presets from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.ConfigPath, backup.Config); err != nil {
				return err
			}
			if err := project.SaveStockPresets(c.StockPath, backup.Stock); err != nil {
				return err
			}
			printer{cmd.OutOrStdout()}.success("Restored settings from %s (created %s)", args[0], backup.CreatedAt)
			return nil
		},
	}
}
