package scraper

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/quantumwork/pkg/models"
)

type registration struct {
	label string
	src   Source
}

// Aggregator fans out to every registered source and concatenates the
// results in registration order.
type Aggregator struct {
	sources   []registration
	countries map[string]Source
	forGeo    func(geo string) Source
	mock      func() []models.JobRecord
	logger    *slog.Logger
}

// NewAggregator registers the built-in sources: RemoteOK, Remotive, Jobicy,
// Arbeitnow and the country-scoped Jobicy feeds.
func NewAggregator(f *Fetcher, siteURL string, logger *slog.Logger) *Aggregator {
	logger = loggerOrDefault(logger)
	newJobicy := func(geo string) Source { return NewJobicy(f, logger, geo) }

	a := &Aggregator{
		sources: []registration{
			{"RemoteOK", NewRemoteOK(f, logger)},
			{"Remotive", NewRemotive(f, logger)},
			{"Jobicy", NewJobicy(f, logger, "")},
			{"Arbeitnow", NewArbeitnow(f, logger)},
		},
		countries: map[string]Source{},
		forGeo:    newJobicy,
		mock:      func() []models.JobRecord { return MockJobs(nil, MockBatchSize, siteURL) },
		logger:    logger,
	}
	for _, c := range countries {
		src := c.source(newJobicy)
		a.sources = append(a.sources, registration{c.label, src})
		a.countries[c.key] = src
	}

	return a
}

// Sources returns the registered source labels in order.
func (a *Aggregator) Sources() []string {
	out := make([]string, len(a.sources))
	for i, r := range a.sources {
		out[i] = r.label
	}
	return out
}

// Run collects listings. useMock returns the synthetic batch. A non-empty
// countryKey runs only that geography, with no mock fallback. Otherwise all
// sources run concurrently and an empty total falls back to the mock batch.
func (a *Aggregator) Run(ctx context.Context, useMock bool, countryKey string) []models.JobRecord {
	if useMock {
		a.logger.Info("scraper using mock data")
		return a.mock()
	}

	if key := strings.ToLower(strings.TrimSpace(countryKey)); key != "" {
		src, ok := a.countries[key]
		if !ok {
			src = a.forGeo(key)
		}
		recs := src.Fetch(ctx)
		a.logger.Info("scraper country run", slog.String("country", key), slog.Int("jobs", len(recs)))
		return recs
	}

	results := make([][]models.JobRecord, len(a.sources))
	var g errgroup.Group
	for i, r := range a.sources {
		g.Go(func() error {
			results[i] = r.src.Fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()

	all := []models.JobRecord{}
	counts := make([]any, 0, len(a.sources))
	for i, r := range a.sources {
		all = append(all, results[i]...)
		counts = append(counts, slog.Int(r.label, len(results[i])))
	}
	a.logger.Info("scraper results by source", slog.Group("sources", counts...))

	if len(all) == 0 {
		a.logger.Warn("no jobs collected, using mock data")
		return a.mock()
	}

	a.logger.Info("scraper finished", slog.Int("total", len(all)))
	return all
}
