package handlers

import "net/http"

// HealthCheck reports that the API is up. No dependencies are touched.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "API Services",
	})
}
