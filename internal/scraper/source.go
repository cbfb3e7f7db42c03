// Package scraper collects remote job listings from public JSON APIs and
// normalizes them into models.JobRecord values.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/garnizeh/quantumwork/internal/skills"
	"github.com/garnizeh/quantumwork/pkg/models"
)

// Source is one upstream job board. Fetch never fails: upstream errors are
// logged and reported as zero results.
type Source interface {
	Name() string
	Fetch(ctx context.Context) []models.JobRecord
}

const (
	defaultCompany  = "Unknown"
	defaultSalary   = "Not specified"
	defaultLocation = "Remote"
	defaultType     = "full-time"

	descriptionLimit = 500
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// rawJob is the adapter-neutral intermediate every source maps its upstream
// item into before normalization.
type rawJob struct {
	Title       string
	Company     string
	Description string
	Salary      string
	Location    string
	Type        string
	URL         string
}

// normalize applies the shared field rules. ok is false for items that
// carry no title.
func normalize(raw rawJob, source, fallbackURL string) (models.JobRecord, bool) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return models.JobRecord{}, false
	}

	found := skills.Extract(title + " " + raw.Description)
	reqs, _ := json.Marshal(found)

	return models.JobRecord{
		Title:          title,
		Company:        orDefault(raw.Company, defaultCompany),
		Description:    cleanDescription(raw.Description),
		Requirements:   string(reqs),
		SkillsRequired: found,
		Salary:         orDefault(raw.Salary, defaultSalary),
		Location:       orDefault(raw.Location, defaultLocation),
		Type:           orDefault(raw.Type, defaultType),
		Source:         source,
		SourceURL:      orDefault(raw.URL, fallbackURL),
	}, true
}

func cleanDescription(s string) string {
	s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	r := []rune(s)
	if len(r) > descriptionLimit {
		return string(r[:descriptionLimit])
	}
	return s
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// guard runs fetch and converts errors and panics into an empty result.
func guard(ctx context.Context, logger *slog.Logger, name string, fetch func(context.Context) ([]models.JobRecord, error)) (out []models.JobRecord) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("source panicked", slog.String("source", name), slog.Any("panic", r))
			out = []models.JobRecord{}
		}
	}()

	recs, err := fetch(ctx)
	if err != nil {
		logger.Error("source failed", slog.String("source", name), slog.Any("err", err))
		return []models.JobRecord{}
	}
	if recs == nil {
		recs = []models.JobRecord{}
	}

	return recs
}

// flexString accepts a JSON string, number, boolean or list of strings. Lists
// are joined with ", ". Upstream APIs are inconsistent about these fields.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = ""
		return nil
	}

	switch s[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
	case '[':
		var items []flexString
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*f = flexString(strings.Join(parts, ", "))
	case '{':
		*f = ""
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			*f = flexString(n.String())
			return nil
		}
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("flexString: unsupported value %s", s)
		}
		*f = flexString(strconv.FormatBool(v))
	}

	return nil
}

// salaryRange formats a min/max pair as "$min - $max"; missing bounds yield
// the single known value or "".
func salaryRange(minV, maxV float64) string {
	fmtNum := func(v float64) string { return "$" + strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case minV > 0 && maxV > 0:
		return fmtNum(minV) + " - " + fmtNum(maxV)
	case minV > 0:
		return fmtNum(minV)
	case maxV > 0:
		return fmtNum(maxV)
	}
	return ""
}
