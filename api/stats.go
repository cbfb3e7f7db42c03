package api

import (
	"net/http"

	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

type StatsHandler struct {
	repo repository.StatsRepo
}

func NewStatsHandler(repo repository.StatsRepo) *StatsHandler {
	return &StatsHandler{repo: repo}
}

type statsResponse struct {
	Success bool                   `json:"success"`
	Stats   *models.CandidateStats `json:"stats"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.repo.CandidateStats(r.Context())
	if err != nil {
		logger.Error("candidate stats", "err", err)
		writeError(w, "failed to build statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, statsResponse{Success: true, Stats: st}, http.StatusOK)
}
