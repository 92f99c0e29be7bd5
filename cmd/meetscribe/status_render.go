package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {label: "INFO", color: "\x1b[34m"},
	statusOK:    {label: "OK", color: "\x1b[32m"},
	statusWarn:  {label: "WARN", color: "\x1b[33m"},
	statusError: {label: "ERROR", color: "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusPrinter writes aligned "label: [KIND] message" report lines, coloured
// only when the destination is a terminal.
type statusPrinter struct {
	out      io.Writer
	colorize bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, colorize: isTerminal(out)}
}

func (p *statusPrinter) section(title string) {
	heading := "== " + strings.TrimSpace(title) + " =="
	fmt.Fprintln(p.out, p.paint(heading, statusInfo))
	fmt.Fprintln(p.out, p.paint(strings.Repeat("-", len(heading)), statusInfo))
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	text := fmt.Sprintf("  %-20s [%s]", label+":", statusStyles[kind].label)
	if message != "" {
		text += " " + message
	}
	fmt.Fprintln(p.out, p.paint(text, kind))
}

func (p *statusPrinter) paint(value string, kind statusKind) string {
	if !p.colorize {
		return value
	}
	return statusStyles[kind].color + value + ansiReset
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
