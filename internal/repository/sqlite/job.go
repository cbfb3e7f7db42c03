package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/garnizeh/quantumwork/internal/db"
	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

const jobInsert = `INSERT INTO jobs (title, company, description, requirements, skills_required, salary, location,
	type, source, source_url, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?)`

func jobArgs(rec models.JobRecord) ([]any, error) {
	skills, err := encodeList(rec.SkillsRequired)
	if err != nil {
		return nil, fmt.Errorf("encode skills_required: %w", err)
	}

	return []any{rec.Title, rec.Company, rec.Description, rec.Requirements, skills, rec.Salary, rec.Location,
		rec.Type, rec.Source, rec.SourceURL, now()}, nil
}

func (r *SQLiteRepo) InsertJobIfAbsent(ctx context.Context, rec models.JobRecord) (bool, error) {
	args, err := jobArgs(rec)
	if err != nil {
		return false, err
	}

	res, err := r.conn.Exec(ctx, jobInsert+` ON CONFLICT(title, company) DO NOTHING`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *SQLiteRepo) CreateJob(ctx context.Context, rec models.JobRecord) (int64, error) {
	args, err := jobArgs(rec)
	if err != nil {
		return 0, err
	}

	res, err := r.conn.Exec(ctx, jobInsert, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: job %q at %q", repository.ErrDuplicate, rec.Title, rec.Company)
		}
		return 0, err
	}

	return res.LastInsertId()
}

func jobWhere(f models.JobFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(` WHERE 1=1`)
	args := []any{}

	if f.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, f.Status)
	}
	if f.Search != "" {
		sb.WriteString(` AND (title LIKE ? OR company LIKE ? OR description LIKE ?)`)
		p := likePattern(f.Search)
		args = append(args, p, p, p)
	}

	return sb.String(), args
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	where, args := jobWhere(f)
	query := `SELECT id, title, company, description, requirements, skills_required, salary, location, type,
		source, source_url, status, created_at FROM jobs` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Job{}
	for rows.Next() {
		var j models.Job
		var skills string
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Description, &j.Requirements, &skills, &j.Salary,
			&j.Location, &j.Type, &j.Source, &j.SourceURL, &j.Status, &j.CreatedAt); err != nil {
			return nil, err
		}
		j.SkillsRequired = decodeList(skills)
		out = append(out, j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountJobs(ctx context.Context, f models.JobFilter) (int64, error) {
	where, args := jobWhere(f)

	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM jobs`+where, args...).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}
