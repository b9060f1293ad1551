package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/groblegark/fieldscript/internal/model"
)

// handleListConfigs handles GET /v1/configs.
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if views == nil {
		views = []*model.ConfigView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"configs": views})
}

// handleGetConfig handles GET /v1/configs/{id}?changelogs=true.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}

	includeChangelogs := r.URL.Query().Get("changelogs") == "true"
	view, err := s.svc.Get(r.Context(), id, includeChangelogs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// updateConfigRequest is the JSON body for PUT /v1/configs/{id}.
type updateConfigRequest struct {
	ScriptBody string `json:"script_body"`
	Cacheable  bool   `json:"cacheable"`
	Comment    string `json:"comment"`
}

// handleUpdateConfig handles PUT /v1/configs/{id}. The actor comes from the
// X-Actor header; user identity is the host's concern, not this core's.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}

	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "anonymous"
	}

	view, err := s.svc.Update(r.Context(), actor, id, &model.ConfigForm{
		ScriptBody: req.ScriptBody,
		Cacheable:  req.Cacheable,
		Comment:    req.Comment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetScript handles GET /v1/configs/{id}/script, the hot read path.
func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}

	script, err := s.svc.GetScript(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, script)
}

// handleInvalidateAll handles POST /v1/cache/invalidate.
func (s *Server) handleInvalidateAll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.InvalidateAll(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// configID parses the {id} path segment, writing a 400 on failure.
func configID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid config id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP status codes. Validation
// errors keep their field-scoped message so the caller can render them
// next to the offending field.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound *model.NotFoundError
		invalid  *model.ScriptInvalidError
		required *model.RequiredFieldError
		tooLong  *model.FieldTooLongError
		conflict *model.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid), errors.As(err, &required), errors.As(err, &tooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
