package api

import (
	"net/http"
	"time"
)

// APIVersion is the version reported by the health endpoint.
const APIVersion = "1.2.0"

var features = []string{"candidates", "emails", "export", "stats", "jobs", "scraper"}

type SystemHandler struct{}

type healthResponse struct {
	Success   bool     `json:"success"`
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
}

type versionResponse struct {
	Success   bool   `json:"success"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Success:   true,
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Version:   APIVersion,
		Features:  features,
	}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, versionResponse{Success: true, Version: version, BuildTime: buildTime}, http.StatusOK)
	}
}
