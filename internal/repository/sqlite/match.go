package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/quantumwork/pkg/models"
)

func (r *SQLiteRepo) ActiveMatchCandidates(ctx context.Context) ([]models.MatchCandidate, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, email, full_name, skills, desired_roles FROM candidates WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MatchCandidate{}
	for rows.Next() {
		var c models.MatchCandidate
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName, &c.Skills, &c.DesiredRoles); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ActiveMatchJobs(ctx context.Context) ([]models.MatchJob, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, title, company, salary, location, source_url, skills_required FROM jobs WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MatchJob{}
	for rows.Next() {
		var j models.MatchJob
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Salary, &j.Location, &j.SourceURL, &j.SkillsRequired); err != nil {
			return nil, err
		}
		out = append(out, j)
	}

	return out, rows.Err()
}

// RecordMatch stores a notified match, refreshing score and skills when the
// pair was recorded before.
func (r *SQLiteRepo) RecordMatch(ctx context.Context, m models.Match) error {
	skills, err := encodeList(m.MatchedSkills)
	if err != nil {
		return fmt.Errorf("encode matched_skills: %w", err)
	}

	_, err = r.conn.Exec(ctx, `INSERT INTO matches (candidate_id, job_id, score, matched_skills, notified_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(candidate_id, job_id) DO UPDATE SET score = excluded.score, matched_skills = excluded.matched_skills, notified_at = excluded.notified_at`,
		m.CandidateID, m.JobID, m.SkillMatchPercentage, skills, now())
	return err
}
