package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"meetscribe/internal/artifact"
	"meetscribe/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var seriesNames []string
	var since string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh every series and materialize all documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, runtimeOptions{series: seriesNames, since: since}, func(runCtx context.Context, rt *runtime) error {
				for _, s := range rt.series {
					added, err := s.Refresh(runCtx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new item(s)\n", s.Name(), len(added))
				}
				for _, s := range rt.series {
					if err := s.MaterializeAll(runCtx); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d document(s) current\n", s.Name(), s.Len())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&seriesNames, "series", "s", nil, "Limit to the named series (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Search window start date (YYYY-MM-DD)")
	return cmd
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var seriesNames []string
	var since string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Search the archive and track new items without processing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, runtimeOptions{series: seriesNames, since: since}, func(runCtx context.Context, rt *runtime) error {
				for _, s := range rt.series {
					added, err := s.Refresh(runCtx)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "%s: %d new item(s)\n", s.Name(), len(added))
					for _, id := range added {
						fmt.Fprintf(out, "  + %s\n", id)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&seriesNames, "series", "s", nil, "Limit to the named series (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "Search window start date (YYYY-MM-DD)")
	return cmd
}

func newMaterializeCommand(ctx *commandContext) *cobra.Command {
	var seriesNames []string
	var stage string

	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Derive missing artifacts for already tracked items",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := artifact.ParseKind(stage)
			if err != nil {
				return services.Wrap(services.ErrValidation, "materialize", "--stage", "", err)
			}
			return ctx.withPipeline(cmd, runtimeOptions{series: seriesNames}, func(runCtx context.Context, rt *runtime) error {
				for _, s := range rt.series {
					if err := s.Materialize(runCtx, kind); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d item(s) at %s\n", s.Name(), s.Len(), kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&seriesNames, "series", "s", nil, "Limit to the named series (repeatable)")
	cmd.Flags().StringVar(&stage, "stage", artifact.KindDocument.String(), "Target artifact: video, audio, segments, or document")
	return cmd
}
