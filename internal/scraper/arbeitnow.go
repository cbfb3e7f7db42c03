package scraper

import (
	"context"
	"log/slog"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	arbeitnowURL  = "https://www.arbeitnow.com/api/job-board-api"
	arbeitnowSite = "https://www.arbeitnow.com"
	arbeitnowMax  = 20
)

type arbeitnowResponse struct {
	Data []arbeitnowItem `json:"data"`
}

type arbeitnowItem struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	URL         string `json:"url"`
}

// Arbeitnow reads the Arbeitnow job board API. It publishes no salaries.
type Arbeitnow struct {
	fetcher *Fetcher
	logger  *slog.Logger
	url     string
}

func NewArbeitnow(f *Fetcher, logger *slog.Logger) *Arbeitnow {
	return &Arbeitnow{fetcher: f, logger: loggerOrDefault(logger), url: arbeitnowURL}
}

func (s *Arbeitnow) Name() string { return "Arbeitnow" }

func (s *Arbeitnow) Fetch(ctx context.Context) []models.JobRecord {
	return guard(ctx, s.logger, s.Name(), func(ctx context.Context) ([]models.JobRecord, error) {
		var resp arbeitnowResponse
		if err := s.fetcher.GetJSON(ctx, s.url, &resp); err != nil {
			return nil, err
		}

		items := resp.Data
		if len(items) > arbeitnowMax {
			items = items[:arbeitnowMax]
		}

		out := make([]models.JobRecord, 0, len(items))
		for _, it := range items {
			typ := defaultType
			if it.Remote {
				typ = "remote"
			}

			rec, ok := normalize(rawJob{
				Title:       it.Title,
				Company:     it.CompanyName,
				Description: it.Description,
				Location:    it.Location,
				Type:        typ,
				URL:         it.URL,
			}, s.Name(), arbeitnowSite)
			if ok {
				out = append(out, rec)
			}
		}

		return out, nil
	})
}
