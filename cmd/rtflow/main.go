// Command rtflow loads a graph definition and drives it through the
// control plane.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/rtflow"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configURL string
	verbose   bool
	timeout   time.Duration

	config *rtflow.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rtflow",
	Short: "rtflow - deterministic dataflow engine",
	Long: `rtflow runs a graph of operators connected by bounded channels,
optionally under a CBS+EDF admission-control scheduler.

Graphs are declared in YAML and loaded from any afs location (file://, mem://, s3:// ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config = rtflow.DefaultConfig()
		if configURL != "" {
			var err error
			if config, err = rtflow.LoadConfig(cmd.Context(), configURL); err != nil {
				return err
			}
		}
		if verbose {
			config.Logging.Level = zapcore.DebugLevel.String()
		}
		var err error
		if logger, err = config.NewLogger(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
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
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "Configuration URL (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
