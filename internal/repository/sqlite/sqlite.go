package sqlite

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/garnizeh/quantumwork/internal/db"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.NewsletterRepo = (*SQLiteRepo)(nil)
var _ repository.StatsRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.MatchRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// encodeList serializes a string list for storage; nil becomes "[]".
func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeList parses a stored string list, yielding an empty list for
// malformed values.
func decodeList(s string) []string {
	out := []string{}
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func likePattern(s string) string {
	return "%" + s + "%"
}
