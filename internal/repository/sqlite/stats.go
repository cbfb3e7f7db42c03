package sqlite

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	topSkillsLimit        = 10
	recentCandidatesLimit = 5
)

func (r *SQLiteRepo) CandidateStats(ctx context.Context) (*models.CandidateStats, error) {
	var st models.CandidateStats

	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM candidates`).Scan(&st.Total); err != nil {
		return nil, err
	}
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM candidates WHERE status = 'active'`).Scan(&st.Active); err != nil {
		return nil, err
	}

	byExp, err := r.experienceCounts(ctx)
	if err != nil {
		return nil, err
	}
	st.ByExperience = byExp

	top, err := r.topSkills(ctx)
	if err != nil {
		return nil, err
	}
	st.TopSkills = top

	recent, err := r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id DESC LIMIT ?`, recentCandidatesLimit)
	if err != nil {
		return nil, err
	}
	st.RecentCandidates = recent

	return &st, nil
}

func (r *SQLiteRepo) experienceCounts(ctx context.Context) ([]models.ExperienceCount, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT experience_level, COUNT(1) FROM candidates GROUP BY experience_level ORDER BY experience_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ExperienceCount{}
	for rows.Next() {
		var ec models.ExperienceCount
		if err := rows.Scan(&ec.ExperienceLevel, &ec.Count); err != nil {
			return nil, err
		}
		out = append(out, ec)
	}

	return out, rows.Err()
}

// topSkills counts skills across all candidates. Ties keep first-seen order;
// rows whose skills do not decode are skipped.
func (r *SQLiteRepo) topSkills(ctx context.Context) ([]models.SkillCount, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT skills FROM candidates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	out := []models.SkillCount{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var skills []string
		if err := json.Unmarshal([]byte(raw), &skills); err != nil {
			continue
		}
		for _, s := range skills {
			idx, ok := counts[s]
			if !ok {
				idx = len(out)
				counts[s] = idx
				out = append(out, models.SkillCount{Name: s})
			}
			out[idx].Count++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topSkillsLimit {
		out = out[:topSkillsLimit]
	}

	return out, nil
}
