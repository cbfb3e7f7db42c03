package scraper

import (
	"context"
	"log/slog"

	"github.com/garnizeh/quantumwork/pkg/models"
)

// JobInserter stores a job unless one with the same title and company exists.
type JobInserter interface {
	InsertJobIfAbsent(ctx context.Context, r models.JobRecord) (bool, error)
}

type IngestResult struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Total      int `json:"total"`
}

// SaveJobs persists records one by one. Failed inserts are logged and
// counted neither as saved nor as duplicates; the batch always completes.
func SaveJobs(ctx context.Context, store JobInserter, records []models.JobRecord, logger *slog.Logger) IngestResult {
	logger = loggerOrDefault(logger)
	res := IngestResult{Total: len(records)}

	for _, rec := range records {
		inserted, err := store.InsertJobIfAbsent(ctx, rec)
		if err != nil {
			logger.Error("save job", slog.String("title", rec.Title), slog.String("company", rec.Company), slog.Any("err", err))
			continue
		}
		if inserted {
			res.Saved++
		} else {
			res.Duplicates++
		}
	}

	logger.Info("jobs saved", slog.Int("saved", res.Saved), slog.Int("duplicates", res.Duplicates), slog.Int("total", res.Total))

	return res
}
