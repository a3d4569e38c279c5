package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/config"
	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/render"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath  string
	renderStyle string
	renderWidth int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intelhub",
	Short: "Competitor intelligence hub",
	Long: `intelhub tracks competitors, asks an external discovery agent for new
content about them, lets you review what it finds, and turns approved
findings into monthly intelligence reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(configPath, Version)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file (missing file means env only)")
	rootCmd.PersistentFlags().StringVar(&renderStyle, "style", render.StyleAuto, "Terminal style: auto, dark, light, notty")
	rootCmd.PersistentFlags().IntVar(&renderWidth, "width", render.DefaultWordWrap, "Terminal word wrap width")
	rootCmd.Version = Version
}

// printMarkdown writes source to the command's stdout through the terminal renderer.
func printMarkdown(cmd *cobra.Command, source string) error {
	out, err := render.Terminal(source, renderStyle, renderWidth)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
