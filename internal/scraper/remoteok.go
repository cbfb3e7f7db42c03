package scraper

import (
	"context"
	"log/slog"
	"slices"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	remoteOKURL  = "https://remoteok.com/api?tags=dev"
	remoteOKSite = "https://remoteok.com"
	remoteOKMax  = 20
)

type remoteOKItem struct {
	ID          flexString `json:"id"`
	Position    string     `json:"position"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	Salary      flexString `json:"salary"`
	SalaryMin   float64    `json:"salary_min"`
	SalaryMax   float64    `json:"salary_max"`
	Location    string     `json:"location"`
	Tags        []string   `json:"tags"`
	ApplyURL    string     `json:"apply_url"`
	URL         string     `json:"url"`
}

// RemoteOK reads the RemoteOK developer feed. The first array element is a
// legal notice without id or position and is skipped.
type RemoteOK struct {
	fetcher *Fetcher
	logger  *slog.Logger
	url     string
}

func NewRemoteOK(f *Fetcher, logger *slog.Logger) *RemoteOK {
	return &RemoteOK{fetcher: f, logger: loggerOrDefault(logger), url: remoteOKURL}
}

func (s *RemoteOK) Name() string { return "RemoteOK" }

func (s *RemoteOK) Fetch(ctx context.Context) []models.JobRecord {
	return guard(ctx, s.logger, s.Name(), func(ctx context.Context) ([]models.JobRecord, error) {
		var items []remoteOKItem
		if err := s.fetcher.GetJSON(ctx, s.url, &items); err != nil {
			return nil, err
		}

		out := make([]models.JobRecord, 0, remoteOKMax)
		for _, it := range items {
			if len(out) == remoteOKMax {
				break
			}
			if it.ID == "" || it.Position == "" {
				continue
			}

			salary := string(it.Salary)
			if salary == "" {
				salary = salaryRange(it.SalaryMin, it.SalaryMax)
			}
			typ := defaultType
			if slices.Contains(it.Tags, "contract") {
				typ = "contract"
			}
			url := it.ApplyURL
			if url == "" {
				url = it.URL
			}

			rec, ok := normalize(rawJob{
				Title:       it.Position,
				Company:     it.Company,
				Description: it.Description,
				Salary:      salary,
				Location:    it.Location,
				Type:        typ,
				URL:         url,
			}, s.Name(), remoteOKSite)
			if ok {
				out = append(out, rec)
			}
		}

		return out, nil
	})
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
