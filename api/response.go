package api

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

func writeMessage(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, messageResponse{Success: true, Message: msg}, status)
}

// NotFoundHandler answers unknown routes with the JSON envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, "route not found", http.StatusNotFound)
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, "method not allowed", http.StatusMethodNotAllowed)
}
