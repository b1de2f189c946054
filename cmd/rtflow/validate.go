package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/rtflow/service/dao/definition"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition URL...]",
	Short: "Validate graph definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	service := definition.New()
	failed := 0
	for _, URL := range args {
		def, err := service.Load(ctx, URL)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", URL, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK   %s (%d channels, %d operators)\n", URL, len(def.Channels), len(def.Operators))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definitions invalid", failed, len(args))
	}
	return nil
}
