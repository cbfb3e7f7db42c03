package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/garnizeh/quantumwork/internal/config"
)

const appName = "qwctl"

// Actual version can be specified in build command.
var version = "dev"

type globals struct {
	cfgFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          appName,
		Short:        "qwctl manages the Quantum Work database and job pipeline",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "a YAML config file overlaying the QW_* environment")
	root.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "verbose/debug output")

	root.AddCommand(
		newMigrateCmd(g),
		newBackupCmd(g),
		newRestoreCmd(g),
		newUpdateJobsCmd(g),
		newVersionCmd(),
	)

	return root
}

func (g *globals) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(g.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	if g.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", appName, version)
		},
	}
}
