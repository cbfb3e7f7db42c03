package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"

	"github.com/garnizeh/quantumwork/internal/tasks"
	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

const (
	defaultCandidateLimit = 100
	maxCandidateLimit     = 1000
	maxBodyBytes          = 1 << 20
)

// updatableCandidateFields are the only keys PUT /api/candidates/{id} applies.
var updatableCandidateFields = map[string]bool{
	"full_name": true, "phone": true, "location": true, "linkedin": true,
	"portfolio": true, "experience_level": true, "current_role": true,
	"skills": true, "desired_roles": true, "salary_expectation": true,
	"availability": true, "english_level": true, "remote_experience": true,
	"bio": true, "status": true, "newsletter": true,
}

var csvColumns = []string{
	"id", "full_name", "email", "phone", "location", "experience_level",
	"current_role", "skills", "desired_roles", "salary_expectation",
	"availability", "english_level", "remote_experience", "status", "created_at",
}

// Enqueuer queues background tasks.
type Enqueuer interface {
	Enqueue(typ string, payload any) (string, error)
}

type CandidatesHandler struct {
	repo  repository.CandidateRepo
	tasks Enqueuer
}

func NewCandidatesHandler(repo repository.CandidateRepo, tasks Enqueuer) *CandidatesHandler {
	return &CandidatesHandler{repo: repo, tasks: tasks}
}

type createCandidateRequest struct {
	Email             string   `json:"email"`
	FullName          string   `json:"full_name"`
	Phone             string   `json:"phone"`
	Location          string   `json:"location"`
	LinkedIn          string   `json:"linkedin"`
	Portfolio         string   `json:"portfolio"`
	ExperienceLevel   string   `json:"experience_level"`
	CurrentRole       string   `json:"current_role"`
	Skills            []string `json:"skills"`
	DesiredRoles      []string `json:"desired_roles"`
	SalaryExpectation string   `json:"salary_expectation"`
	Availability      string   `json:"availability"`
	EnglishLevel      string   `json:"english_level"`
	RemoteExperience  bool     `json:"remote_experience"`
	Bio               string   `json:"bio"`
	Newsletter        *bool    `json:"newsletter"`
}

type createdResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type candidateResponse struct {
	Success   bool              `json:"success"`
	Candidate *models.Candidate `json:"candidate"`
}

type candidateListResponse struct {
	Success    bool               `json:"success"`
	Count      int                `json:"count"`
	Candidates []models.Candidate `json:"candidates"`
}

func (h *CandidatesHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), candidateSchema, body); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createCandidateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	c := &models.Candidate{
		Email:             strings.TrimSpace(req.Email),
		FullName:          strings.TrimSpace(req.FullName),
		Phone:             req.Phone,
		Location:          req.Location,
		LinkedIn:          req.LinkedIn,
		Portfolio:         req.Portfolio,
		ExperienceLevel:   req.ExperienceLevel,
		CurrentRole:       req.CurrentRole,
		Skills:            req.Skills,
		DesiredRoles:      req.DesiredRoles,
		SalaryExpectation: req.SalaryExpectation,
		Availability:      req.Availability,
		EnglishLevel:      req.EnglishLevel,
		RemoteExperience:  req.RemoteExperience,
		Bio:               req.Bio,
		Status:            models.StatusActive,
		Newsletter:        req.Newsletter == nil || *req.Newsletter,
	}
	if c.Email == "" || c.FullName == "" {
		writeError(w, "email and full_name must not be blank", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateCandidate(r.Context(), c)
	if errors.Is(err, repository.ErrDuplicate) {
		writeError(w, "this email is already registered", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Error("create candidate", "err", err)
		writeError(w, "failed to save candidate", http.StatusInternalServerError)
		return
	}

	// the welcome e-mail never fails the registration
	if h.tasks != nil {
		if _, err := h.tasks.Enqueue(tasks.TypeWelcomeEmail, tasks.WelcomePayload{Email: c.Email, FullName: c.FullName}); err != nil {
			logger.Warn("enqueue welcome email", "candidate_id", id, "err", err)
		}
	}

	writeJSON(w, createdResponse{Success: true, ID: id, Message: "candidate registered successfully"}, http.StatusCreated)
}

func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultCandidateLimit
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = min(v, maxCandidateLimit)
		}
	}

	list, err := h.repo.ListCandidates(r.Context(), models.CandidateFilter{
		Status: q.Get("status"),
		Skill:  q.Get("skill"),
		Search: q.Get("search"),
		Limit:  limit,
	})
	if err != nil {
		logger.Error("list candidates", "err", err)
		writeError(w, "failed to fetch candidates", http.StatusInternalServerError)
		return
	}

	writeJSON(w, candidateListResponse{Success: true, Count: len(list), Candidates: list}, http.StatusOK)
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.repo.GetCandidate(r.Context(), id)
	if err != nil {
		logger.Error("get candidate", "id", id, "err", err)
		writeError(w, "failed to fetch candidate", http.StatusInternalServerError)
		return
	}
	if c == nil {
		writeError(w, "candidate not found", http.StatusNotFound)
		return
	}

	writeJSON(w, candidateResponse{Success: true, Candidate: c}, http.StatusOK)
}

func (h *CandidatesHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	fields := map[string]any{}
	for k, v := range body {
		if updatableCandidateFields[k] && v != nil {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		writeError(w, "no fields to update", http.StatusBadRequest)
		return
	}

	patch, err := decodePatch(fields)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if patch.Status != nil && *patch.Status != models.StatusActive && *patch.Status != models.StatusInactive {
		writeError(w, "status must be active or inactive", http.StatusBadRequest)
		return
	}

	found, err := h.repo.UpdateCandidate(r.Context(), id, patch)
	if err != nil {
		logger.Error("update candidate", "id", id, "err", err)
		writeError(w, "failed to update candidate", http.StatusInternalServerError)
		return
	}
	if !found {
		writeError(w, "candidate not found", http.StatusNotFound)
		return
	}

	writeMessage(w, "candidate updated successfully", http.StatusOK)
}

func decodePatch(fields map[string]any) (models.CandidatePatch, error) {
	var patch models.CandidatePatch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &patch,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return patch, err
	}
	if err := dec.Decode(fields); err != nil {
		return patch, fmt.Errorf("invalid fields: %w", err)
	}
	return patch, nil
}

func (h *CandidatesHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.repo.DeleteCandidate(r.Context(), id)
	if err != nil {
		logger.Error("delete candidate", "id", id, "err", err)
		writeError(w, "failed to delete candidate", http.StatusInternalServerError)
		return
	}
	if !found {
		writeError(w, "candidate not found", http.StatusNotFound)
		return
	}

	writeMessage(w, "candidate removed successfully", http.StatusOK)
}

// ExportCSV streams every candidate, newest first, as a CSV attachment.
func (h *CandidatesHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListCandidates(r.Context(), models.CandidateFilter{})
	if err != nil {
		logger.Error("export candidates", "err", err)
		writeError(w, "failed to generate csv", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("candidates_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvColumns)
	for _, c := range list {
		_ = cw.Write([]string{
			strconv.FormatInt(c.ID, 10),
			c.FullName,
			c.Email,
			c.Phone,
			c.Location,
			c.ExperienceLevel,
			c.CurrentRole,
			strings.Join(c.Skills, ", "),
			strings.Join(c.DesiredRoles, ", "),
			c.SalaryExpectation,
			c.Availability,
			c.EnglishLevel,
			strconv.FormatBool(c.RemoteExperience),
			c.Status,
			time.UnixMilli(c.CreatedAt).UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Error("write csv", "err", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
