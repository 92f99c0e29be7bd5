package main

import (
	"errors"

	"github.com/spf13/cobra"

	"meetscribe/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check tools, directories, and archive credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			printer := newStatusPrinter(cmd.OutOrStdout())
			results := preflight.RunAll(cmd.Context(), cfg)
			printer.section("Preflight")
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				printer.line(r.Name, kind, r.Detail)
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
