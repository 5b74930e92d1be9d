// Package cli implements the guillocut command-line interface.
//
// Commands:
//   - pack: pack a job file (or an items list) and write reports
//   - compare: run the what-if scenarios for a job and rank them
//   - serve: run the HTTP packing service
//   - stock: list and edit stock presets
//   - config: show and edit user defaults
//
// All commands accept --verbose for debug logging and --log-file to also log
// to a rotating file. The logger travels in the command's context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/piwi3910/guillocut/internal/model"
	"github.com/piwi3910/guillocut/internal/project"
)

// Version is set by main from ldflags.
var Version = "dev"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string // ~/.guillocut/config.json unless overridden
	StockPath  string // ~/.guillocut/stock.json unless overridden

	stderr  io.Writer
	logFile *lumberjack.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		ConfigPath: project.DefaultConfigPath(),
		StockPath:  project.DefaultStockPath(),
		stderr:     w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetLogFile tees log output into a rotating file at path.
func (c *CLI) SetLogFile(path string) {
	c.logFile = newLogFile(path)
	c.Logger.SetOutput(io.MultiWriter(c.stderr, c.logFile))
}

// Close releases the log file, if any.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose bool
		logFile string
	)

	root := &cobra.Command{
		Use:           "guillocut",
		Short:         "Guillotine cutting-stock optimizer",
		Long:          `guillocut packs rectangular parts onto identical stock sheets using guillotine cuts and writes cut layouts, labels and cut lists.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			if logFile != "" {
				c.SetLogFile(logFile)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file (rotated)")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", c.ConfigPath, "user config file")
	root.PersistentFlags().StringVar(&c.StockPath, "stock-file", c.StockPath, "stock presets file")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.stockCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadSettings reads the user's config and stock presets.
func (c *CLI) loadSettings() (model.AppConfig, model.StockInventory, error) {
	cfg, err := project.LoadAppConfig(c.ConfigPath)
	if err != nil {
		return cfg, model.StockInventory{}, err
	}
	stock, err := project.LoadStockPresets(c.StockPath)
	return cfg, stock, err
}
