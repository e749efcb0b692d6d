package api

import "net/http"

// HealthHandler handles GET /v1/sys/health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"encryption_mode": s.records.Gate().EncryptionEnabled(),
		"version":         "1.0.0",
	})
}
