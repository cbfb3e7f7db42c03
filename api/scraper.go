package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/garnizeh/quantumwork/internal/matcher"
	"github.com/garnizeh/quantumwork/internal/scraper"
	"github.com/garnizeh/quantumwork/pkg/models"
)

// Scraper collects listings and stores the new ones.
type Scraper interface {
	Scrape(ctx context.Context, useMock bool, country string) scraper.IngestResult
}

type ScraperHandler struct {
	scraper Scraper
	matcher *matcher.Matcher
}

func NewScraperHandler(s Scraper, m *matcher.Matcher) *ScraperHandler {
	return &ScraperHandler{scraper: s, matcher: m}
}

type scraperRunRequest struct {
	UseMock bool   `json:"useMock"`
	Country string `json:"country"`
}

type scraperRunResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Result  scraper.IngestResult `json:"result"`
}

type matchesResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Matches []models.Match `json:"matches"`
}

func (h *ScraperHandler) RunScraper(w http.ResponseWriter, r *http.Request) {
	var req scraperRunRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	// a run may outlast the server's write timeout; its own length is bounded
	// by the per-source fetch timeouts
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("clear write deadline", "err", err)
	}

	res := h.scraper.Scrape(r.Context(), req.UseMock, req.Country)
	writeJSON(w, scraperRunResponse{Success: true, Message: "scraper run completed", Result: res}, http.StatusOK)
}

func (h *ScraperHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matcher.FindMatches(r.Context())
	if err != nil {
		logger.Error("find matches", "err", err)
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, matchesResponse{Success: true, Count: len(matches), Matches: matches}, http.StatusOK)
}
