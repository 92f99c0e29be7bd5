package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"meetscribe/internal/series"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var seriesNames []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracked items and which artifacts exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(cmd.Context(), runtimeOptions{series: seriesNames})
			if err != nil {
				return err
			}
			defer rt.Close()

			snapshots := make([]series.Snapshot, 0, len(rt.series))
			for _, s := range rt.series {
				snapshots = append(snapshots, s.Snapshot())
			}
			if asJSON {
				return writeJSON(cmd, snapshots)
			}

			printer := newStatusPrinter(cmd.OutOrStdout())
			for i, snap := range snapshots {
				if i > 0 {
					fmt.Fprintln(printer.out)
				}
				printer.section(snap.Name)
				printer.line("Search query", statusInfo, snap.SearchQuery)
				printer.line("Documents", summaryKind(snap), summarize(snap))
				printer.line("Markdown directory", statusInfo, snap.Roots.Documents)
				if len(snap.Items) == 0 {
					continue
				}
				fmt.Fprintln(printer.out, renderTable(itemColumns, itemRows(snap.Items, printer)))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&seriesNames, "series", "s", nil, "Limit to the named series (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit series snapshots as JSON")
	return cmd
}

var itemColumns = []column{
	{title: "#", align: text.AlignRight},
	{title: "Identifier"},
	{title: "Date"},
	{title: "Title", maxWidth: 48},
	{title: "Stage"},
	{title: "Chunks", align: text.AlignRight},
}

func itemRows(items []series.ItemSnapshot, printer *statusPrinter) [][]string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		stage, kind := itemStage(it)
		chunks := ""
		if it.Chunks > 0 {
			chunks = strconv.Itoa(it.Chunks)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.Identifier,
			it.Date,
			it.Title,
			printer.paint(stage, kind),
			chunks,
		})
	}
	return rows
}

// itemStage names the furthest artifact present for an item.
func itemStage(it series.ItemSnapshot) (string, statusKind) {
	switch {
	case !it.Resolved:
		return "pending", statusInfo
	case it.Missing:
		return "missing video", statusWarn
	case it.Document:
		return "document", statusOK
	case it.Segments:
		return "segments", statusInfo
	case it.Audio:
		return "audio", statusInfo
	case it.Video:
		return "video", statusInfo
	default:
		return "resolved", statusInfo
	}
}

func summarize(snap series.Snapshot) string {
	var documented, missing int
	for _, it := range snap.Items {
		switch {
		case it.Missing:
			missing++
		case it.Document:
			documented++
		}
	}
	parts := []string{
		fmt.Sprintf("%d tracked", len(snap.Items)),
		fmt.Sprintf("%d transcribed", documented),
	}
	if missing > 0 {
		parts = append(parts, fmt.Sprintf("%d without video", missing))
	}
	return strings.Join(parts, ", ")
}

func summaryKind(snap series.Snapshot) statusKind {
	for _, it := range snap.Items {
		if it.Missing {
			return statusWarn
		}
		if !it.Document {
			return statusInfo
		}
	}
	return statusOK
}
