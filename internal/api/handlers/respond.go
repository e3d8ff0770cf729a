package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v with the given HTTP status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFail sends a client-error envelope (4xx).
func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "fail", "message": message})
}

// writeError sends a server-error envelope (5xx).
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
