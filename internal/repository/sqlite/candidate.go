package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/quantumwork/internal/db"
	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

const candidateColumns = `id, email, full_name, phone, location, linkedin, portfolio, experience_level, current_role,
	skills, desired_roles, salary_expectation, availability, english_level, remote_experience, bio, status,
	newsletter, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(s rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var skills, roles string
	var remote, newsletter int
	if err := s.Scan(&c.ID, &c.Email, &c.FullName, &c.Phone, &c.Location, &c.LinkedIn, &c.Portfolio,
		&c.ExperienceLevel, &c.CurrentRole, &skills, &roles, &c.SalaryExpectation, &c.Availability,
		&c.EnglishLevel, &remote, &c.Bio, &c.Status, &newsletter, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.Skills = decodeList(skills)
	c.DesiredRoles = decodeList(roles)
	c.RemoteExperience = remote != 0
	c.Newsletter = newsletter != 0

	return &c, nil
}

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("candidate is nil")
	}

	skills, err := encodeList(c.Skills)
	if err != nil {
		return 0, fmt.Errorf("encode skills: %w", err)
	}
	roles, err := encodeList(c.DesiredRoles)
	if err != nil {
		return 0, fmt.Errorf("encode desired_roles: %w", err)
	}
	status := c.Status
	if status == "" {
		status = models.StatusActive
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO candidates (email, full_name, phone, location, linkedin, portfolio,
		experience_level, current_role, skills, desired_roles, salary_expectation, availability, english_level,
		remote_experience, bio, status, newsletter, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Email, c.FullName, c.Phone, c.Location, c.LinkedIn, c.Portfolio, c.ExperienceLevel, c.CurrentRole,
		skills, roles, c.SalaryExpectation, c.Availability, c.EnglishLevel, boolToInt(c.RemoteExperience),
		c.Bio, status, boolToInt(c.Newsletter), ts, ts)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: email %s", repository.ErrDuplicate, c.Email)
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`)
	args := []any{}

	if f.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, f.Status)
	}
	if f.Skill != "" {
		sb.WriteString(` AND skills LIKE ?`)
		args = append(args, likePattern(f.Skill))
	}
	if f.Search != "" {
		sb.WriteString(` AND (full_name LIKE ? OR email LIKE ? OR location LIKE ?)`)
		p := likePattern(f.Search)
		args = append(args, p, p, p)
	}
	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	return r.queryCandidates(ctx, sb.String(), args...)
}

func (r *SQLiteRepo) queryCandidates(ctx context.Context, query string, args ...any) ([]models.Candidate, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateCandidate(ctx context.Context, id int64, p models.CandidatePatch) (bool, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	str := func(col string, v *string) {
		if v != nil {
			set(col, *v)
		}
	}
	flag := func(col string, v *bool) {
		if v != nil {
			set(col, boolToInt(*v))
		}
	}
	list := func(col string, v *[]string) error {
		if v == nil {
			return nil
		}
		s, err := encodeList(*v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", col, err)
		}
		set(col, s)
		return nil
	}

	str("full_name", p.FullName)
	str("phone", p.Phone)
	str("location", p.Location)
	str("linkedin", p.LinkedIn)
	str("portfolio", p.Portfolio)
	str("experience_level", p.ExperienceLevel)
	str("current_role", p.CurrentRole)
	if err := list("skills", p.Skills); err != nil {
		return false, err
	}
	if err := list("desired_roles", p.DesiredRoles); err != nil {
		return false, err
	}
	str("salary_expectation", p.SalaryExpectation)
	str("availability", p.Availability)
	str("english_level", p.EnglishLevel)
	flag("remote_experience", p.RemoteExperience)
	str("bio", p.Bio)
	str("status", p.Status)
	flag("newsletter", p.Newsletter)

	if len(sets) == 0 {
		return false, fmt.Errorf("no fields to update")
	}
	set("updated_at", now())
	args = append(args, id)

	res, err := r.conn.Exec(ctx, `UPDATE candidates SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *SQLiteRepo) DeleteCandidate(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *SQLiteRepo) NewsletterRecipients(ctx context.Context) ([]models.Recipient, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, email, full_name FROM candidates WHERE status = 'active' AND newsletter = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Recipient{}
	for rows.Next() {
		var rc models.Recipient
		if err := rows.Scan(&rc.ID, &rc.Email, &rc.FullName); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) Unsubscribe(ctx context.Context, id int64, email string) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE candidates SET newsletter = 0, updated_at = ? WHERE id = ? AND email = ?`, now(), id, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
