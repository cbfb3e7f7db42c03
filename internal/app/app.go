// Package app builds the collaborators shared by the server and qwctl from
// a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	dbfs "github.com/garnizeh/quantumwork/db"
	"github.com/garnizeh/quantumwork/internal/config"
	"github.com/garnizeh/quantumwork/internal/db"
	"github.com/garnizeh/quantumwork/internal/notify"
	"github.com/garnizeh/quantumwork/internal/pipeline"
	"github.com/garnizeh/quantumwork/internal/scraper"
)

// OpenDB opens the configured database and, when migrate is set, applies
// the embedded migrations.
func OpenDB(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) (*db.DB, error) {
	d, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if migrate {
		if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
			d.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return d, nil
}

// Unsubscriber signs newsletter unsubscribe links. It is disabled when no
// unsubscribe secret is configured.
func Unsubscriber(cfg *config.Config, logger *slog.Logger) *notify.Unsubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	unsub := notify.NewUnsubscriber(cfg.UnsubscribeSecret, cfg.PublicURL, cfg.UnsubscribeTTL, logger)
	if !unsub.Enabled() && cfg.PublicURL != "" {
		logger.Warn("public_url is set but unsubscribe_secret is empty; newsletters go out without unsubscribe links")
	}
	return unsub
}

// Notifier returns an SMTP-backed notifier. Newsletters carry unsubscribe
// links when a public URL is configured.
func Notifier(cfg *config.Config, unsub *notify.Unsubscriber, logger *slog.Logger) *notify.Notifier {
	transport := notify.NewSMTPTransport(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
	})
	return notify.New(transport, notify.Options{
		From:         cfg.Mail.From,
		FromName:     cfg.Mail.FromName,
		SiteURL:      cfg.Mail.SiteURL,
		Unsubscriber: unsub,
	}, logger)
}

// Runner wires the live job sources to store and mailer.
func Runner(cfg *config.Config, store pipeline.Store, mailer pipeline.Mailer, logger *slog.Logger) *pipeline.Runner {
	fetcher := scraper.NewFetcher(nil, cfg.Scraper.UserAgent, cfg.Scraper.Timeout, logger)
	agg := scraper.NewAggregator(fetcher, cfg.Mail.SiteURL, logger)
	return pipeline.New(agg, store, mailer, cfg.Mail.SiteURL, logger)
}
