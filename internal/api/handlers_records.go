package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/org/recordvault/internal/crypto"
	"github.com/org/recordvault/internal/storage"
	"github.com/org/recordvault/pkg/models"
	"github.com/rs/zerolog/log"
)

// writeRecordError maps record-path failures to HTTP responses. Cipher
// errors signal data corruption or a mode mismatch and are logged for
// operator attention.
func writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	var cipherErr *crypto.Error
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.As(err, &cipherErr):
		log.Error().
			Str("request_id", requestIDFromCtx(r.Context())).
			Str("kind", cipherErr.Kind.String()).
			Err(err).
			Msg("cipher failure")
		writeError(w, http.StatusInternalServerError, "field cipher failure: "+cipherErr.Kind.String())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func recordResponse(rec *models.Record) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"id":         rec.ID,
			"fields":     rec.Fields,
			"created_at": rec.CreatedAt,
			"updated_at": rec.UpdatedAt,
		},
	}
}

// RecordCreateHandler handles POST /v1/records
func (s *Server) RecordCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields map[string]any `json:"fields"`
	}
	if err := decodeJSON(r, &req); err != nil || len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "fields required")
		return
	}

	rec, err := s.records.Create(r.Context(), req.Fields)
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	recordsTotal.Inc()
	log.Debug().
		Str("record_id", rec.ID).
		Str("subject", subjectFromCtx(r.Context())).
		Msg("record created")
	writeJSON(w, http.StatusCreated, recordResponse(rec))
}

// RecordGetHandler handles GET /v1/records/{id}
func (s *Server) RecordGetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

// RecordUpdateHandler handles PUT /v1/records/{id}
func (s *Server) RecordUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Fields map[string]any `json:"fields"`
	}
	if err := decodeJSON(r, &req); err != nil || len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "fields required")
		return
	}

	rec, err := s.records.Update(r.Context(), id, req.Fields)
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

// RecordDeleteHandler handles DELETE /v1/records/{id}
func (s *Server) RecordDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.records.Delete(r.Context(), id); err != nil {
		writeRecordError(w, r, err)
		return
	}
	recordsTotal.Dec()
	log.Debug().
		Str("record_id", id).
		Str("subject", subjectFromCtx(r.Context())).
		Msg("record deleted")
	w.WriteHeader(http.StatusNoContent)
}

// RecordListHandler handles GET /v1/records
func (s *Server) RecordListHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := s.records.List(r.Context())
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"ids": ids},
	})
}
