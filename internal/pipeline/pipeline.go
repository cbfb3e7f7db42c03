// Package pipeline strings the scraper, storage, matcher and notifier
// together into the scrape and update runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garnizeh/quantumwork/internal/matcher"
	"github.com/garnizeh/quantumwork/internal/notify"
	"github.com/garnizeh/quantumwork/internal/scraper"
	"github.com/garnizeh/quantumwork/pkg/models"
)

// MatchesPerCandidate is how many ranked matches an update run keeps per
// candidate. Only the first is mailed.
const MatchesPerCandidate = 5

// Collector gathers job listings.
type Collector interface {
	Run(ctx context.Context, useMock bool, country string) []models.JobRecord
}

type Store interface {
	scraper.JobInserter
	matcher.Store
	RecordMatch(ctx context.Context, m models.Match) error
}

type Mailer interface {
	Send(ctx context.Context, to, tmpl string, data notify.Data) notify.Result
}

type Runner struct {
	collector Collector
	store     Store
	matcher   *matcher.Matcher
	mailer    Mailer
	siteURL   string
	logger    *slog.Logger
}

func New(collector Collector, store Store, mailer Mailer, siteURL string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		collector: collector,
		store:     store,
		matcher:   matcher.New(store, logger),
		mailer:    mailer,
		siteURL:   siteURL,
		logger:    logger,
	}
}

// Scrape collects listings and stores the new ones.
func (r *Runner) Scrape(ctx context.Context, useMock bool, country string) scraper.IngestResult {
	records := r.collector.Run(ctx, useMock, country)
	return scraper.SaveJobs(ctx, r.store, records, r.logger)
}

type UpdateOptions struct {
	UseMock bool
	Country string
	// Notify mails each matched candidate its best match.
	Notify bool
}

type UpdateResult struct {
	scraper.IngestResult
	Matches      int `json:"matches"`
	Candidates   int `json:"candidates"`
	Notified     int `json:"notified"`
	NotifyFailed int `json:"notifyFailed"`
}

// Update is the one-shot job refresh: scrape, save and, when anything new
// was stored, match and notify. Only a matcher failure is returned.
func (r *Runner) Update(ctx context.Context, opts UpdateOptions) (UpdateResult, error) {
	var res UpdateResult
	res.IngestResult = r.Scrape(ctx, opts.UseMock, opts.Country)
	if res.Saved == 0 {
		r.logger.Info("no new jobs, skipping matching")
		return res, nil
	}

	matches, err := r.matcher.FindMatches(ctx)
	if err != nil {
		return res, fmt.Errorf("find matches: %w", err)
	}
	res.Matches = len(matches)

	grouped := GroupByCandidate(matches, MatchesPerCandidate)
	res.Candidates = len(grouped)
	r.logger.Info("matches found", slog.Int("matches", res.Matches), slog.Int("candidates", res.Candidates))

	if !opts.Notify {
		return res, nil
	}

	for _, group := range grouped {
		top := group[0]
		if r.notify(ctx, top) {
			res.Notified++
		} else {
			res.NotifyFailed++
		}
	}
	r.logger.Info("match notifications sent", slog.Int("notified", res.Notified), slog.Int("failed", res.NotifyFailed))

	return res, nil
}

func (r *Runner) notify(ctx context.Context, m models.Match) bool {
	applyURL := m.SourceURL
	if applyURL == "" {
		applyURL = r.siteURL + "/jobs"
	}
	location := m.Location
	if location == "" {
		location = "Remote"
	}

	sent := r.mailer.Send(ctx, m.CandidateEmail, notify.TemplateJobMatch, notify.Data{
		CandidateName:   m.CandidateName,
		JobTitle:        m.JobTitle,
		Company:         m.Company,
		Location:        location,
		Salary:          m.Salary,
		MatchPercentage: m.SkillMatchPercentage,
		MatchedSkills:   m.MatchedSkills,
		ApplyURL:        applyURL,
	})
	if !sent.Success {
		r.logger.Error("notify candidate", slog.Int64("candidate_id", m.CandidateID), slog.String("err", sent.Error))
		return false
	}

	if err := r.store.RecordMatch(ctx, m); err != nil {
		r.logger.Error("record match", slog.Int64("candidate_id", m.CandidateID), slog.Int64("job_id", m.JobID), slog.Any("err", err))
	}

	return true
}

// GroupByCandidate keeps up to limit matches per candidate, preserving the
// ranked order. Groups are ordered by each candidate's first appearance.
func GroupByCandidate(matches []models.Match, limit int) [][]models.Match {
	index := map[int64]int{}
	var out [][]models.Match
	for _, m := range matches {
		i, ok := index[m.CandidateID]
		if !ok {
			i = len(out)
			index[m.CandidateID] = i
			out = append(out, nil)
		}
		if len(out[i]) < limit {
			out[i] = append(out[i], m)
		}
	}

	return out
}
