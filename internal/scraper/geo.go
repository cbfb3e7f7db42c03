package scraper

import (
	"context"

	"github.com/garnizeh/quantumwork/pkg/models"
)

// fallbackSource runs secondary only when primary yields nothing.
type fallbackSource struct {
	primary   Source
	secondary Source
}

func (s *fallbackSource) Name() string { return s.primary.Name() }

func (s *fallbackSource) Fetch(ctx context.Context) []models.JobRecord {
	if recs := s.primary.Fetch(ctx); len(recs) > 0 {
		return recs
	}
	return s.secondary.Fetch(ctx)
}

// country is a geography-scoped source registration.
type country struct {
	key   string
	label string
	geo   string
	// alt is the Jobicy geo tried when geo returns no jobs.
	alt string
}

var countries = []country{
	{key: "usa", label: "USA", geo: "usa", alt: "us"},
	{key: "india", label: "India", geo: "india", alt: "in"},
	{key: "portugal", label: "Portugal", geo: "portugal"},
	{key: "japan", label: "Japan", geo: "japan"},
	{key: "australia", label: "Australia", geo: "australia"},
	{key: "new-zealand", label: "New Zealand", geo: "new-zealand"},
	{key: "italy", label: "Italy", geo: "italy"},
	{key: "canada", label: "Canada", geo: "canada"},
}

func (c country) source(newJobicy func(geo string) Source) Source {
	src := newJobicy(c.geo)
	if c.alt != "" {
		return &fallbackSource{primary: src, secondary: newJobicy(c.alt)}
	}
	return src
}
