package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/quantumwork/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups that miss return (nil, nil).

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

type CandidateRepo interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	ListCandidates(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error)
	// UpdateCandidate applies the non-nil patch fields and reports whether
	// the candidate exists.
	UpdateCandidate(ctx context.Context, id int64, p models.CandidatePatch) (bool, error)
	DeleteCandidate(ctx context.Context, id int64) (bool, error)
}

type NewsletterRepo interface {
	NewsletterRecipients(ctx context.Context) ([]models.Recipient, error)
	// Unsubscribe clears the newsletter flag of the candidate matching both
	// id and email.
	Unsubscribe(ctx context.Context, id int64, email string) (bool, error)
}

type StatsRepo interface {
	CandidateStats(ctx context.Context) (*models.CandidateStats, error)
}

type JobRepo interface {
	// InsertJobIfAbsent stores r unless a job with the same title and
	// company exists. It reports whether a row was inserted.
	InsertJobIfAbsent(ctx context.Context, r models.JobRecord) (bool, error)
	// CreateJob stores r and returns ErrDuplicate on a title/company clash.
	CreateJob(ctx context.Context, r models.JobRecord) (int64, error)
	ListJobs(ctx context.Context, f models.JobFilter) ([]models.Job, error)
	CountJobs(ctx context.Context, f models.JobFilter) (int64, error)
}

type MatchRepo interface {
	ActiveMatchCandidates(ctx context.Context) ([]models.MatchCandidate, error)
	ActiveMatchJobs(ctx context.Context) ([]models.MatchJob, error)
	RecordMatch(ctx context.Context, m models.Match) error
}
