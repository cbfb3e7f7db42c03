package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garnizeh/quantumwork/internal/app"
	"github.com/garnizeh/quantumwork/internal/pipeline"
	"github.com/garnizeh/quantumwork/internal/repository/sqlite"
)

func newUpdateJobsCmd(g *globals) *cobra.Command {
	var (
		useMock  bool
		country  string
		noNotify bool
	)
	cmd := &cobra.Command{
		Use:   "update-jobs",
		Short: "Scrape job sources, store new jobs and notify matching candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			d, err := app.OpenDB(cmd.Context(), cfg, cfg.MigrateOnStart, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			repo := sqlite.New(d, logger)
			runner := app.Runner(cfg, repo, app.Notifier(cfg, app.Unsubscriber(cfg, logger), logger), logger)

			res, err := runner.Update(cmd.Context(), pipeline.UpdateOptions{
				UseMock: useMock,
				Country: country,
				Notify:  !noNotify,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("print result: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useMock, "mock", false, "use the synthetic job batch instead of the live sources")
	cmd.Flags().StringVar(&country, "country", "", "only scrape the given country feed (e.g. usa, india)")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "skip the job-match e-mails")

	return cmd
}
