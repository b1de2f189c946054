package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/rtflow"
	"github.com/viant/rtflow/service/event"
	"go.uber.org/zap"
)

var (
	steps      int
	showAudit  bool
	noDetMode  bool
	noAllocErr bool
)

var runCmd = &cobra.Command{
	Use:   "run [definition URL]",
	Short: "Apply a graph definition and run it",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func init() {
	runCmd.Flags().IntVarP(&steps, "steps", "n", 0, "Steps to run (default: definition steps)")
	runCmd.Flags().BoolVar(&showAudit, "audit", false, "Print the audit log after the run")
	runCmd.Flags().BoolVar(&noDetMode, "best-effort", false, "Ignore the deterministic section of the definition")
	runCmd.Flags().BoolVar(&noAllocErr, "allow-alloc", false, "Log allocations in deterministic steps instead of faulting")
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if noAllocErr {
		config.Processor.EnforceAllocGuard = false
	}
	srv := rtflow.New(rtflow.WithConfig(config), rtflow.WithLogger(logger))
	defer func() {
		if err := srv.Close(context.Background()); err != nil {
			logger.Warn("failed to close", zap.Error(err))
		}
	}()

	def, err := srv.LoadDefinition(ctx, args[0])
	if err != nil {
		return err
	}
	if noDetMode {
		def.Deterministic = nil
	}
	if err = srv.Apply(ctx, def); err != nil {
		return err
	}
	n := def.Steps
	if steps > 0 {
		n = steps
	}
	report, err := srv.StartGraph(ctx, n)
	if err != nil {
		return err
	}
	logger.Info("run completed",
		zap.String("definition", def.Name),
		zap.Int("steps", report.Steps),
		zap.Stringer("stop", report.Stop),
		zap.Duration("duration", report.Duration))

	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(map[string]interface{}{
		"report":  report,
		"stop":    report.Stop.String(),
		"status":  srv.Status(),
		"metrics": srv.Metrics().Values,
	}); err != nil {
		return err
	}
	if showAudit {
		srv.DrainAudit(func(record event.Record) {
			fmt.Fprintf(out, "%6d %12d %-18s op=%d ch=%d depth=%d\n",
				record.Seq, record.At.Nanoseconds(), record.Kind, record.Operator, record.Channel, record.Depth)
		})
	}
	return nil
}
