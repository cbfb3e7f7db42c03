package scraper

import (
	"context"
	"log/slog"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	remotiveURL  = "https://remotive.com/api/remote-jobs"
	remotiveSite = "https://remotive.com"
	remotiveMax  = 20
)

type remotiveResponse struct {
	Jobs []remotiveItem `json:"jobs"`
}

type remotiveItem struct {
	Title                     string     `json:"title"`
	CompanyName               string     `json:"company_name"`
	Description               string     `json:"description"`
	Salary                    flexString `json:"salary"`
	CandidateRequiredLocation string     `json:"candidate_required_location"`
	JobType                   string     `json:"job_type"`
	URL                       string     `json:"url"`
}

// Remotive reads the Remotive public job feed.
type Remotive struct {
	fetcher *Fetcher
	logger  *slog.Logger
	url     string
}

func NewRemotive(f *Fetcher, logger *slog.Logger) *Remotive {
	return &Remotive{fetcher: f, logger: loggerOrDefault(logger), url: remotiveURL}
}

func (s *Remotive) Name() string { return "Remotive" }

func (s *Remotive) Fetch(ctx context.Context) []models.JobRecord {
	return guard(ctx, s.logger, s.Name(), func(ctx context.Context) ([]models.JobRecord, error) {
		var resp remotiveResponse
		if err := s.fetcher.GetJSON(ctx, s.url, &resp); err != nil {
			return nil, err
		}

		items := resp.Jobs
		if len(items) > remotiveMax {
			items = items[:remotiveMax]
		}

		out := make([]models.JobRecord, 0, len(items))
		for _, it := range items {
			rec, ok := normalize(rawJob{
				Title:       it.Title,
				Company:     it.CompanyName,
				Description: it.Description,
				Salary:      string(it.Salary),
				Location:    it.CandidateRequiredLocation,
				Type:        it.JobType,
				URL:         it.URL,
			}, s.Name(), remotiveSite)
			if ok {
				out = append(out, rec)
			}
		}

		return out, nil
	})
}
