package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/quantumwork/internal/matcher"
	"github.com/garnizeh/quantumwork/pkg/repository"
)

// Store is the storage surface the handlers need.
type Store interface {
	repository.CandidateRepo
	repository.NewsletterRepo
	repository.StatsRepo
	repository.JobRepo
	repository.MatchRepo
}

// Deps carries the collaborators SetupRoutes wires into the handlers.
// Tasks and Unsubscriber are optional.
type Deps struct {
	Store        Store
	Mailer       Mailer
	Scraper      Scraper
	Tasks        Enqueuer
	Unsubscriber TokenVerifier
}

func SetupRoutes(version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Unmatched requests skip r.Use, so the envelope handlers carry their own
	// chain. CORSMiddleware answers preflights that land here.
	r.NotFoundHandler = unmatched(NotFoundHandler)
	r.MethodNotAllowedHandler = unmatched(MethodNotAllowedHandler)

	// Create handlers
	systemHandler := &SystemHandler{}
	candidatesHandler := NewCandidatesHandler(deps.Store, deps.Tasks)
	emailHandler := NewEmailHandler(deps.Mailer, deps.Store, deps.Store, deps.Unsubscriber)
	statsHandler := NewStatsHandler(deps.Store)
	scraperHandler := NewScraperHandler(deps.Scraper, matcher.New(deps.Store, logger))
	jobsHandler := NewJobsHandler(deps.Store)

	api := r.PathPrefix("/api").Subrouter()

	// System endpoints
	api.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	api.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")

	// Candidates endpoints; the export route precedes {id}
	api.HandleFunc("/candidates", candidatesHandler.CreateCandidate).Methods("POST")
	api.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	api.HandleFunc("/candidates/export/csv", candidatesHandler.ExportCSV).Methods("GET")
	api.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.GetCandidate).Methods("GET")
	api.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.UpdateCandidate).Methods("PUT")
	api.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.DeleteCandidate).Methods("DELETE")

	// Email endpoints
	api.HandleFunc("/email/test", emailHandler.SendTest).Methods("POST")
	api.HandleFunc("/email/newsletter", emailHandler.SendNewsletter).Methods("POST")
	api.HandleFunc("/email/job-match", emailHandler.SendJobMatch).Methods("POST")
	api.HandleFunc("/newsletter/unsubscribe", emailHandler.Unsubscribe).Methods("GET")

	api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	// Pipeline endpoints
	api.HandleFunc("/scraper/run", scraperHandler.RunScraper).Methods("POST")
	api.HandleFunc("/matches", scraperHandler.ListMatches).Methods("GET")

	// Jobs endpoints
	api.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")

	return r
}

func unmatched(h http.HandlerFunc) http.Handler {
	return RequestIDMiddleware(LoggingMiddleware(CORSMiddleware(h)))
}
