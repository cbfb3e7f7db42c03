package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/garnizeh/quantumwork/internal/notify"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

// Mailer is the notifier surface the e-mail endpoints use.
type Mailer interface {
	Send(ctx context.Context, to, tmpl string, data notify.Data) notify.Result
	SendNewsletterToAll(ctx context.Context, recipients notify.RecipientLister, jobs []notify.NewsletterJob) notify.NewsletterResult
}

// TokenVerifier resolves an unsubscribe token to the candidate it names.
type TokenVerifier interface {
	Verify(token string) (int64, string, error)
}

type EmailHandler struct {
	mailer      Mailer
	candidates  repository.CandidateRepo
	newsletter  repository.NewsletterRepo
	unsubscribe TokenVerifier
}

func NewEmailHandler(m Mailer, cr repository.CandidateRepo, nr repository.NewsletterRepo, tv TokenVerifier) *EmailHandler {
	return &EmailHandler{mailer: m, candidates: cr, newsletter: nr, unsubscribe: tv}
}

type testEmailRequest struct {
	To       string `json:"to"`
	Template string `json:"template"`
}

type testEmailResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// sampleData is what POST /api/email/test renders with.
var sampleData = notify.Data{
	FullName:  "Test",
	JobsCount: 5,
	Jobs: []notify.NewsletterJob{
		{Title: "Fullstack Developer", Company: "Tech Corp", Location: "Remote", URL: "#"},
	},
}

func (h *EmailHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.To) == "" {
		writeError(w, "recipient email is required", http.StatusBadRequest)
		return
	}
	if req.Template == "" {
		req.Template = notify.TemplateWelcome
	}

	res := h.mailer.Send(r.Context(), req.To, req.Template, sampleData)
	if !res.Success {
		writeError(w, res.Error, http.StatusInternalServerError)
		return
	}

	writeJSON(w, testEmailResponse{Success: true, Message: "email sent successfully", MessageID: res.MessageID}, http.StatusOK)
}

type newsletterRequest struct {
	Jobs []notify.NewsletterJob `json:"jobs"`
}

func (h *EmailHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	res := h.mailer.SendNewsletterToAll(r.Context(), h.newsletter, req.Jobs)
	if !res.Success {
		writeJSON(w, res, http.StatusInternalServerError)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

type jobMatchRequest struct {
	CandidateID int64       `json:"candidateId"`
	JobData     notify.Data `json:"jobData"`
}

func (h *EmailHandler) SendJobMatch(w http.ResponseWriter, r *http.Request) {
	var req jobMatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.CandidateID <= 0 {
		writeError(w, "candidateId is required", http.StatusBadRequest)
		return
	}

	c, err := h.candidates.GetCandidate(r.Context(), req.CandidateID)
	if err != nil {
		logger.Error("get candidate", "id", req.CandidateID, "err", err)
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if c == nil {
		writeError(w, "candidate not found", http.StatusNotFound)
		return
	}

	data := req.JobData
	data.CandidateName = c.FullName
	writeJSON(w, h.mailer.Send(r.Context(), c.Email, notify.TemplateJobMatch, data), http.StatusOK)
}

// Unsubscribe handles the signed link carried by newsletters.
func (h *EmailHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if h.unsubscribe == nil {
		writeError(w, "unsubscribe links are not enabled", http.StatusNotFound)
		return
	}

	id, email, err := h.unsubscribe.Verify(r.URL.Query().Get("token"))
	if errors.Is(err, notify.ErrUnsubscribeDisabled) {
		writeError(w, "unsubscribe links are not enabled", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "invalid or expired unsubscribe link", http.StatusBadRequest)
		return
	}

	found, err := h.newsletter.Unsubscribe(r.Context(), id, email)
	if err != nil {
		logger.Error("unsubscribe", "id", id, "err", err)
		writeError(w, "failed to unsubscribe", http.StatusInternalServerError)
		return
	}
	if !found {
		writeError(w, "candidate not found", http.StatusNotFound)
		return
	}

	writeMessage(w, "you have been unsubscribed from the newsletter", http.StatusOK)
}
