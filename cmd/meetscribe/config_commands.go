package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return configCmd
}

// initTarget resolves where `config init` writes, refusing to clobber an
// existing file unless overwrite is set.
func initTarget(flagPath string, overwrite bool) (string, error) {
	var (
		target string
		err    error
	)
	if flagPath = strings.TrimSpace(flagPath); flagPath == "" {
		target, err = config.DefaultConfigPath()
	} else {
		target, err = config.ExpandPath(flagPath)
	}
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if overwrite {
		return target, nil
	}
	switch _, err := os.Stat(target); {
	case err == nil:
		return "", fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("check config path: %w", err)
	}
	return target, nil
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration and report what it tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath, overwrite)
			if err != nil {
				return err
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			cfg, err := config.Parse(target)
			if err != nil {
				return fmt.Errorf("reload sample: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			printConfigSummary(out, cfg)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "Before running meetscribe: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			printConfigSummary(out, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Data directory: %s\n", cfg.Paths.DataDir)
	fmt.Fprintf(out, "State database: %s\n", cfg.Paths.StateDB)
	if len(cfg.Series) == 0 {
		fmt.Fprintln(out, "No series configured")
	}
	for _, s := range cfg.Series {
		fmt.Fprintf(out, "Series %s: %s (formats %s)\n", s.Name, s.SearchQuery, strings.Join(s.Formats(cfg.Archive.PreferredFormats), ", "))
	}
}
