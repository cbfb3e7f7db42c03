package scraper

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	jobicyURL  = "https://jobicy.com/api/v2/remote-jobs"
	jobicySite = "https://jobicy.com"
	jobicyMax  = 20
)

type jobicyResponse struct {
	Jobs []jobicyItem `json:"jobs"`
}

type jobicyItem struct {
	JobTitle        string     `json:"jobTitle"`
	CompanyName     string     `json:"companyName"`
	JobDescription  string     `json:"jobDescription"`
	AnnualSalary    flexString `json:"annualSalary"`
	AnnualSalaryMin float64    `json:"annualSalaryMin"`
	AnnualSalaryMax float64    `json:"annualSalaryMax"`
	JobGeo          flexString `json:"jobGeo"`
	JobType         flexString `json:"jobType"`
	URL             string     `json:"url"`
}

// Jobicy reads the Jobicy remote feed, optionally scoped to a geography.
type Jobicy struct {
	fetcher *Fetcher
	logger  *slog.Logger
	geo     string
	baseURL string
}

// NewJobicy returns the unscoped Jobicy source when geo is empty.
func NewJobicy(f *Fetcher, logger *slog.Logger, geo string) *Jobicy {
	return &Jobicy{fetcher: f, logger: loggerOrDefault(logger), geo: geo, baseURL: jobicyURL}
}

func (s *Jobicy) Name() string {
	if s.geo != "" {
		return "Jobicy-" + s.geo
	}
	return "Jobicy"
}

func (s *Jobicy) endpoint() string {
	q := url.Values{}
	q.Set("count", "20")
	if s.geo != "" {
		q.Set("geo", s.geo)
	}
	return s.baseURL + "?" + q.Encode()
}

func (s *Jobicy) Fetch(ctx context.Context) []models.JobRecord {
	return guard(ctx, s.logger, s.Name(), func(ctx context.Context) ([]models.JobRecord, error) {
		var resp jobicyResponse
		if err := s.fetcher.GetJSON(ctx, s.endpoint(), &resp); err != nil {
			return nil, err
		}

		items := resp.Jobs
		if len(items) > jobicyMax {
			items = items[:jobicyMax]
		}

		out := make([]models.JobRecord, 0, len(items))
		for _, it := range items {
			salary := string(it.AnnualSalary)
			if salary == "" {
				salary = salaryRange(it.AnnualSalaryMin, it.AnnualSalaryMax)
			}
			location := string(it.JobGeo)
			if location == "" {
				location = s.geo
			}

			rec, ok := normalize(rawJob{
				Title:       it.JobTitle,
				Company:     it.CompanyName,
				Description: it.JobDescription,
				Salary:      salary,
				Location:    location,
				Type:        string(it.JobType),
				URL:         it.URL,
			}, s.Name(), jobicySite)
			if ok {
				out = append(out, rec)
			}
		}

		return out, nil
	})
}
