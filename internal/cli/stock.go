package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/piwi3910/guillocut/internal/project"
)

func (c *CLI) stockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage stock presets",
	}

	cmd.AddCommand(c.stockListCommand())
	cmd.AddCommand(c.stockAddCommand())
	cmd.AddCommand(c.stockRemoveCommand())
	cmd.AddCommand(c.stockImportCommand())

	return cmd
}

func (c *CLI) stockListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stock presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadStockPresets(c.StockPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStock(inv))
			return nil
		},
	}
}

func renderStock(inv model.StockInventory) string {
	rows := make([][]string, len(inv.Stocks))
	for i, s := range inv.Stocks {
		rows[i] = []string{s.ID, s.Name, fmt.Sprintf("%g", s.Width), fmt.Sprintf("%g", s.Height), s.Material}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Width", "Height", "Material").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func (c *CLI) stockAddCommand() *cobra.Command {
	var material string

	cmd := &cobra.Command{
		Use:   "add <name> <width> <height>",
		Short: "Add or replace a stock preset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parsePositive("width", args[1])
			if err != nil {
				return err
			}
			h, err := parsePositive("height", args[2])
			if err != nil {
				return err
			}

			inv, err := project.LoadStockPresets(c.StockPath)
			if err != nil {
				return err
			}
			inv.Add(model.NewStockPreset(args[0], w, h, material))
			if err := project.SaveStockPresets(c.StockPath, inv); err != nil {
				return err
			}
			printer{cmd.OutOrStdout()}.success("Saved preset %q (%g x %g)", args[0], w, h)
			return nil
		},
	}

	cmd.Flags().StringVar(&material, "material", "", "material name")
	return cmd
}

func (c *CLI) stockRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name-or-id>",
		Short: "Remove a stock preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadStockPresets(c.StockPath)
			if err != nil {
				return err
			}
			if !inv.Remove(args[0]) {
				return fmt.Errorf("no stock preset %q", args[0])
			}
			if err := project.SaveStockPresets(c.StockPath, inv); err != nil {
				return err
			}
			printer{cmd.OutOrStdout()}.success("Removed %q", args[0])
			return nil
		},
	}
}

func (c *CLI) stockImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge stock presets from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadStockPresets(c.StockPath)
			if err != nil {
				return err
			}
			before := len(inv.Stocks)
			if inv, err = project.ImportStockPresets(args[0], inv); err != nil {
				return err
			}
			if err := project.SaveStockPresets(c.StockPath, inv); err != nil {
				return err
			}
			printer{cmd.OutOrStdout()}.success("Imported presets, %d new", len(inv.Stocks)-before)
			return nil
		},
	}
}

func parsePositive(what, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !model.ValidDimension(v) {
		return 0, fmt.Errorf("%s must be a finite positive number, got %q", what, s)
	}
	return v, nil
}
