package mock

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

// Store is an in-memory implementation of the repository interfaces for
// handler and pipeline tests. Setting Err makes every call fail with it.
type Store struct {
	mu         sync.Mutex
	Err        error
	candidates []models.Candidate
	jobs       []models.Job
	Recorded   []models.Match
	nextID     int64
	clock      int64
}

var _ repository.CandidateRepo = (*Store)(nil)
var _ repository.NewsletterRepo = (*Store)(nil)
var _ repository.StatsRepo = (*Store)(nil)
var _ repository.JobRepo = (*Store)(nil)
var _ repository.MatchRepo = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) tick() int64 {
	s.clock++
	return s.clock
}

func (s *Store) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for _, e := range s.candidates {
		if e.Email == c.Email {
			return 0, repository.ErrDuplicate
		}
	}

	s.nextID++
	stored := *c
	stored.ID = s.nextID
	if stored.Status == "" {
		stored.Status = models.StatusActive
	}
	if stored.Skills == nil {
		stored.Skills = []string{}
	}
	if stored.DesiredRoles == nil {
		stored.DesiredRoles = []string{}
	}
	stored.CreatedAt = s.tick()
	stored.UpdatedAt = stored.CreatedAt
	s.candidates = append(s.candidates, stored)

	return stored.ID, nil
}

func (s *Store) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, c := range s.candidates {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}

	return nil, nil
}

func (s *Store) ListCandidates(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.Candidate{}
	for i := len(s.candidates) - 1; i >= 0; i-- {
		c := s.candidates[i]
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Skill != "" && !strings.Contains(strings.ToLower(strings.Join(c.Skills, ",")), strings.ToLower(f.Skill)) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.FullName+"\x00"+c.Email+"\x00"+c.Location), q) {
				continue
			}
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}

	return out, nil
}

func (s *Store) UpdateCandidate(ctx context.Context, id int64, p models.CandidatePatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for i := range s.candidates {
		c := &s.candidates[i]
		if c.ID != id {
			continue
		}
		setStr := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		setStr(&c.FullName, p.FullName)
		setStr(&c.Phone, p.Phone)
		setStr(&c.Location, p.Location)
		setStr(&c.LinkedIn, p.LinkedIn)
		setStr(&c.Portfolio, p.Portfolio)
		setStr(&c.ExperienceLevel, p.ExperienceLevel)
		setStr(&c.CurrentRole, p.CurrentRole)
		setStr(&c.SalaryExpectation, p.SalaryExpectation)
		setStr(&c.Availability, p.Availability)
		setStr(&c.EnglishLevel, p.EnglishLevel)
		setStr(&c.Bio, p.Bio)
		setStr(&c.Status, p.Status)
		if p.Skills != nil {
			c.Skills = append([]string{}, (*p.Skills)...)
		}
		if p.DesiredRoles != nil {
			c.DesiredRoles = append([]string{}, (*p.DesiredRoles)...)
		}
		if p.RemoteExperience != nil {
			c.RemoteExperience = *p.RemoteExperience
		}
		if p.Newsletter != nil {
			c.Newsletter = *p.Newsletter
		}
		c.UpdatedAt = s.tick()
		return true, nil
	}

	return false, nil
}

func (s *Store) DeleteCandidate(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for i, c := range s.candidates {
		if c.ID == id {
			s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

func (s *Store) NewsletterRecipients(ctx context.Context) ([]models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.Recipient{}
	for _, c := range s.candidates {
		if c.Status == models.StatusActive && c.Newsletter {
			out = append(out, models.Recipient{ID: c.ID, Email: c.Email, FullName: c.FullName})
		}
	}

	return out, nil
}

func (s *Store) Unsubscribe(ctx context.Context, id int64, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for i := range s.candidates {
		if s.candidates[i].ID == id && s.candidates[i].Email == email {
			s.candidates[i].Newsletter = false
			return true, nil
		}
	}

	return false, nil
}

func (s *Store) CandidateStats(ctx context.Context) (*models.CandidateStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	st := &models.CandidateStats{ByExperience: []models.ExperienceCount{}, TopSkills: []models.SkillCount{}, RecentCandidates: []models.Candidate{}}
	st.Total = int64(len(s.candidates))
	for _, c := range s.candidates {
		if c.Status == models.StatusActive {
			st.Active++
		}
	}

	return st, nil
}

func (s *Store) InsertJobIfAbsent(ctx context.Context, r models.JobRecord) (bool, error) {
	_, err := s.CreateJob(ctx, r)
	if err == repository.ErrDuplicate {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) CreateJob(ctx context.Context, r models.JobRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for _, j := range s.jobs {
		if j.Title == r.Title && j.Company == r.Company {
			return 0, repository.ErrDuplicate
		}
	}

	s.nextID++
	j := models.Job{ID: s.nextID, JobRecord: r, Status: models.StatusActive, CreatedAt: s.tick()}
	s.jobs = append(s.jobs, j)

	return j.ID, nil
}

func (s *Store) filterJobs(f models.JobFilter) []models.Job {
	out := []models.Job{}
	for _, j := range s.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(j.Title+"\x00"+j.Company+"\x00"+j.Description), q) {
				continue
			}
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt > out[b].CreatedAt })

	return out
}

func (s *Store) ListJobs(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := s.filterJobs(f)
	if f.Limit > 0 {
		start := min(max(f.Offset, 0), len(out))
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}

	return out, nil
}

func (s *Store) CountJobs(ctx context.Context, f models.JobFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	return int64(len(s.filterJobs(f))), nil
}

func (s *Store) ActiveMatchCandidates(ctx context.Context) ([]models.MatchCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.MatchCandidate{}
	for _, c := range s.candidates {
		if c.Status != models.StatusActive {
			continue
		}
		skills, _ := json.Marshal(c.Skills)
		roles, _ := json.Marshal(c.DesiredRoles)
		out = append(out, models.MatchCandidate{ID: c.ID, Email: c.Email, FullName: c.FullName, Skills: string(skills), DesiredRoles: string(roles)})
	}

	return out, nil
}

func (s *Store) ActiveMatchJobs(ctx context.Context) ([]models.MatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.MatchJob{}
	for _, j := range s.jobs {
		if j.Status != models.StatusActive {
			continue
		}
		skills, _ := json.Marshal(j.SkillsRequired)
		out = append(out, models.MatchJob{ID: j.ID, Title: j.Title, Company: j.Company, Salary: j.Salary, Location: j.Location, SourceURL: j.SourceURL, SkillsRequired: string(skills)})
	}

	return out, nil
}

func (s *Store) RecordMatch(ctx context.Context, m models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Recorded = append(s.Recorded, m)

	return nil
}
