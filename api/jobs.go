package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/garnizeh/quantumwork/internal/skills"
	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

const (
	defaultJobLimit = 20
	maxJobLimit     = 100
	// maxJobPage keeps (page-1)*limit far from int overflow
	maxJobPage = 1_000_000
)

type JobsHandler struct {
	repo repository.JobRepo
}

func NewJobsHandler(repo repository.JobRepo) *JobsHandler {
	return &JobsHandler{repo: repo}
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type jobListResponse struct {
	Success    bool         `json:"success"`
	Jobs       []models.Job `json:"jobs"`
	Pagination pagination   `json:"pagination"`
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if p := q.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
		if page > maxJobPage {
			writeError(w, "page must not exceed 1000000", http.StatusBadRequest)
			return
		}
	}
	limit := defaultJobLimit
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = min(v, maxJobLimit)
		}
	}
	status := q.Get("status")
	if status == "" {
		status = models.StatusActive
	}

	f := models.JobFilter{Status: status, Search: q.Get("search"), Limit: limit, Offset: (page - 1) * limit}
	jobs, err := h.repo.ListJobs(r.Context(), f)
	if err != nil {
		logger.Error("list jobs", "err", err)
		writeError(w, "failed to fetch jobs", http.StatusInternalServerError)
		return
	}
	total, err := h.repo.CountJobs(r.Context(), f)
	if err != nil {
		logger.Error("count jobs", "err", err)
		writeError(w, "failed to fetch jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobListResponse{
		Success: true,
		Jobs:    jobs,
		Pagination: pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + int64(limit) - 1) / int64(limit),
		},
	}, http.StatusOK)
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), jobSchema, body); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var rec models.JobRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Company = strings.TrimSpace(rec.Company)
	if rec.Title == "" || rec.Company == "" {
		writeError(w, "title and company must not be blank", http.StatusBadRequest)
		return
	}
	if len(rec.SkillsRequired) == 0 {
		rec.SkillsRequired = skills.Extract(rec.Title + " " + rec.Description)
	}
	if rec.Source == "" {
		rec.Source = "Manual"
	}

	id, err := h.repo.CreateJob(r.Context(), rec)
	if errors.Is(err, repository.ErrDuplicate) {
		writeError(w, "a job with this title and company already exists", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Error("create job", "err", err)
		writeError(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, createdResponse{Success: true, ID: id, Message: "job created successfully"}, http.StatusCreated)
}
