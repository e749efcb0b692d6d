package api

import "net/http"

// LoginHandler handles POST /v1/auth/login. It issues a bearer token for
// the given subject; credential verification is an upstream concern and
// not performed here.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"auth": map[string]any{
			"token":          token,
			"token_type":     "Bearer",
			"lease_duration": int(s.tokens.TTL().Seconds()),
		},
	})
}
