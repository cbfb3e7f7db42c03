package models

// Domain models matching the database schema in db/migrations/0001_init.sql

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Candidate struct {
	ID                int64    `json:"id" db:"id"`
	Email             string   `json:"email" db:"email"`
	FullName          string   `json:"full_name" db:"full_name"`
	Phone             string   `json:"phone" db:"phone"`
	Location          string   `json:"location" db:"location"`
	LinkedIn          string   `json:"linkedin" db:"linkedin"`
	Portfolio         string   `json:"portfolio" db:"portfolio"`
	ExperienceLevel   string   `json:"experience_level" db:"experience_level"`
	CurrentRole       string   `json:"current_role" db:"current_role"`
	Skills            []string `json:"skills" db:"skills"`
	DesiredRoles      []string `json:"desired_roles" db:"desired_roles"`
	SalaryExpectation string   `json:"salary_expectation" db:"salary_expectation"`
	Availability      string   `json:"availability" db:"availability"`
	EnglishLevel      string   `json:"english_level" db:"english_level"`
	RemoteExperience  bool     `json:"remote_experience" db:"remote_experience"`
	Bio               string   `json:"bio" db:"bio"`
	Status            string   `json:"status" db:"status"`
	Newsletter        bool     `json:"newsletter" db:"newsletter"`
	CreatedAt         int64    `json:"created_at" db:"created_at"`
	UpdatedAt         int64    `json:"updated_at" db:"updated_at"`
}

// CandidatePatch carries a partial candidate update. Nil fields are left
// untouched.
type CandidatePatch struct {
	FullName          *string   `mapstructure:"full_name"`
	Phone             *string   `mapstructure:"phone"`
	Location          *string   `mapstructure:"location"`
	LinkedIn          *string   `mapstructure:"linkedin"`
	Portfolio         *string   `mapstructure:"portfolio"`
	ExperienceLevel   *string   `mapstructure:"experience_level"`
	CurrentRole       *string   `mapstructure:"current_role"`
	Skills            *[]string `mapstructure:"skills"`
	DesiredRoles      *[]string `mapstructure:"desired_roles"`
	SalaryExpectation *string   `mapstructure:"salary_expectation"`
	Availability      *string   `mapstructure:"availability"`
	EnglishLevel      *string   `mapstructure:"english_level"`
	RemoteExperience  *bool     `mapstructure:"remote_experience"`
	Bio               *string   `mapstructure:"bio"`
	Status            *string   `mapstructure:"status"`
	Newsletter        *bool     `mapstructure:"newsletter"`
}

// CandidateFilter narrows a candidate listing. Limit <= 0 means no limit.
type CandidateFilter struct {
	Status string
	Skill  string
	Search string
	Limit  int
}

// Recipient is a newsletter addressee.
type Recipient struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"full_name" db:"full_name"`
}

type ExperienceCount struct {
	ExperienceLevel string `json:"experience_level" db:"experience_level"`
	Count           int64  `json:"count" db:"count"`
}

type SkillCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CandidateStats struct {
	Total            int64             `json:"total"`
	Active           int64             `json:"active"`
	ByExperience     []ExperienceCount `json:"byExperience"`
	TopSkills        []SkillCount      `json:"topSkills"`
	RecentCandidates []Candidate       `json:"recentCandidates"`
}

// JobRecord is the normalized listing every source adapter produces and the
// shape persisted into the jobs table.
type JobRecord struct {
	Title          string   `json:"title" db:"title"`
	Company        string   `json:"company" db:"company"`
	Description    string   `json:"description" db:"description"`
	Requirements   string   `json:"requirements" db:"requirements"`
	SkillsRequired []string `json:"skills_required" db:"skills_required"`
	Salary         string   `json:"salary" db:"salary"`
	Location       string   `json:"location" db:"location"`
	Type           string   `json:"type" db:"type"`
	Source         string   `json:"source" db:"source"`
	SourceURL      string   `json:"source_url" db:"source_url"`
}

type Job struct {
	ID int64 `json:"id" db:"id"`
	JobRecord
	Status    string `json:"status" db:"status"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// JobFilter narrows a job listing. Limit <= 0 means no limit.
type JobFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// MatchCandidate is the matcher's view of an active candidate. Skills and
// DesiredRoles hold the raw serialized JSON so decode failures can be
// handled per candidate.
type MatchCandidate struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	FullName     string `db:"full_name"`
	Skills       string `db:"skills"`
	DesiredRoles string `db:"desired_roles"`
}

// MatchJob is the matcher's view of an active job.
type MatchJob struct {
	ID             int64  `db:"id"`
	Title          string `db:"title"`
	Company        string `db:"company"`
	Salary         string `db:"salary"`
	Location       string `db:"location"`
	SourceURL      string `db:"source_url"`
	SkillsRequired string `db:"skills_required"`
}

type Match struct {
	CandidateID          int64    `json:"candidateId"`
	CandidateEmail       string   `json:"candidateEmail"`
	CandidateName        string   `json:"candidateName"`
	JobID                int64    `json:"jobId"`
	JobTitle             string   `json:"jobTitle"`
	Company              string   `json:"company"`
	Salary               string   `json:"salary"`
	Location             string   `json:"location"`
	SourceURL            string   `json:"sourceUrl"`
	MatchedSkills        []string `json:"matchedSkills"`
	SkillMatchPercentage int      `json:"skillMatchPercentage"`
}
