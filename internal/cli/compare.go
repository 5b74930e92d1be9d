package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/piwi3910/guillocut/internal/engine"
)

func (c *CLI) compareCommand() *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "compare [job-file]",
		Short: "Compare packing heuristics for a job",
		Long: `Run the job once with the current settings and once per alternative
sort key, sort direction, split rule and fit score, then rank the runs by
bins used and waste.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			res, _, err := c.resolveJob(cmd, args, &flags)
			if err != nil {
				return err
			}

			scenarios := engine.BuildDefaultScenarios(res.Config)
			prog := newProgress(logger)
			results := engine.CompareScenarios(res.Input, scenarios)
			prog.done(fmt.Sprintf("Ran %d scenarios", len(results)))

			best := engine.BestScenario(results)
			fmt.Fprintln(cmd.OutOrStdout(), renderComparison(results, best))
			if best < 0 {
				return fmt.Errorf("every scenario failed: %w", results[0].Err)
			}
			printer{cmd.OutOrStdout()}.success("Best: %s (%s)", results[best].Scenario.Name, results[best].Scenario.Config)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// comparisonRows formats results as table rows.
func comparisonRows(results []engine.ComparisonResult, best int) [][]string {
	rows := make([][]string, len(results))
	for i, r := range results {
		mark := ""
		if i == best {
			mark = iconSuccess
		}
		if r.Err != nil {
			rows[i] = []string{mark, r.Scenario.Name, "-", "-", "-", r.Err.Error()}
			continue
		}
		rows[i] = []string{
			mark,
			r.Scenario.Name,
			fmt.Sprint(r.BinsUsed),
			fmt.Sprint(r.Placed),
			fmt.Sprintf("%.1f", r.WastePercent),
			"",
		}
	}
	return rows
}

func renderComparison(results []engine.ComparisonResult, best int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Scenario", "Bins", "Placed", "Waste %", "Error").
		Rows(comparisonRows(results, best)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row < 0:
				return headerStyle.Padding(0, 1)
			case row == best:
				return base.Foreground(colorGreen).Bold(true)
			case row < len(results) && results[row].Err != nil:
				return base.Foreground(colorDim)
			}
			return base
		})
	return t.Render()
}
