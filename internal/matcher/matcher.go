// Package matcher scores candidate/job pairs by skill and role overlap.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	// MinSkillPercentage includes a pair on skill overlap alone.
	MinSkillPercentage = 30
	// RoleMatchFloor is the minimum score of an included pair whose job
	// title matches a desired role.
	RoleMatchFloor = 50
)

// Store provides the active candidates and jobs, each ordered by id.
type Store interface {
	ActiveMatchCandidates(ctx context.Context) ([]models.MatchCandidate, error)
	ActiveMatchJobs(ctx context.Context) ([]models.MatchJob, error)
}

type Matcher struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{store: store, logger: logger}
}

type candidateView struct {
	src    models.MatchCandidate
	skills []string
	roles  []string
}

type jobView struct {
	src    models.MatchJob
	skills []string
	title  string
}

// FindMatches scores every active candidate against every active job and
// returns the included pairs ordered by descending percentage. Candidates
// or jobs whose stored lists do not decode are left out.
func (m *Matcher) FindMatches(ctx context.Context) ([]models.Match, error) {
	cands, err := m.store.ActiveMatchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	jobs, err := m.store.ActiveMatchJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	cviews := make([]candidateView, 0, len(cands))
	for _, c := range cands {
		skills, err1 := decodeLower(c.Skills)
		roles, err2 := decodeLower(c.DesiredRoles)
		if err1 != nil || err2 != nil {
			m.logger.Debug("skip candidate with malformed lists", slog.Int64("candidate_id", c.ID))
			continue
		}
		cviews = append(cviews, candidateView{src: c, skills: skills, roles: roles})
	}

	jviews := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		skills, err := decodeLower(j.SkillsRequired)
		if err != nil {
			m.logger.Debug("skip job with malformed skills", slog.Int64("job_id", j.ID))
			continue
		}
		jviews = append(jviews, jobView{src: j, skills: skills, title: strings.ToLower(j.Title)})
	}

	out := []models.Match{}
	for _, c := range cviews {
		for _, j := range jviews {
			matched, pct, ok := score(c.skills, c.roles, j.skills, j.title)
			if !ok {
				continue
			}
			out = append(out, models.Match{
				CandidateID:          c.src.ID,
				CandidateEmail:       c.src.Email,
				CandidateName:        c.src.FullName,
				JobID:                j.src.ID,
				JobTitle:             j.src.Title,
				Company:              j.src.Company,
				Salary:               j.src.Salary,
				Location:             j.src.Location,
				SourceURL:            j.src.SourceURL,
				MatchedSkills:        matched,
				SkillMatchPercentage: pct,
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SkillMatchPercentage > out[b].SkillMatchPercentage
	})

	return out, nil
}

// Score reports the skills of a candidate found in a job, the resulting
// percentage and whether the pair counts as a match. Inputs are compared
// case-insensitively by plain substring containment in either direction.
func Score(candidateSkills, desiredRoles, jobSkills []string, jobTitle string) ([]string, int, bool) {
	return score(lowerAll(candidateSkills), lowerAll(desiredRoles), lowerAll(jobSkills), strings.ToLower(jobTitle))
}

// score expects lowercased inputs.
func score(cSkills, roles, jSkills []string, title string) ([]string, int, bool) {
	matched := []string{}
	for _, c := range cSkills {
		for _, j := range jSkills {
			if strings.Contains(j, c) || strings.Contains(c, j) {
				matched = append(matched, c)
				break
			}
		}
	}

	roleMatch := false
	for _, r := range roles {
		if strings.Contains(title, r) || strings.Contains(r, title) {
			roleMatch = true
			break
		}
	}

	pct := percentage(len(matched), len(jSkills))
	if pct < MinSkillPercentage && !(roleMatch && len(matched) > 0) {
		return matched, pct, false
	}
	if roleMatch && pct < RoleMatchFloor {
		pct = RoleMatchFloor
	}

	return matched, pct, true
}

// percentage is round(100*n/total) with halves rounded up.
func percentage(n, total int) int {
	if total == 0 {
		return 0
	}
	return (200*n + total) / (2 * total)
}

func decodeLower(raw string) ([]string, error) {
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return lowerAll(v), nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
