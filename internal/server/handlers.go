package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/persist"
)

// maxBodyBytes bounds manifest and action request bodies.
const maxBodyBytes = 8 << 20

// StateResponse summarizes a store after a command.
type StateResponse struct {
	Applied   bool                `json:"applied"`
	History   engine.HistoryState `json:"history"`
	Selection []string            `json:"selection"`
	Latest    string              `json:"latest,omitempty"`
	Elements  int                 `json:"elements"`
}

// SelectionResponse is the body of GET /graphs/{id}/selection.
type SelectionResponse struct {
	Selection []string    `json:"selection"`
	Mode      engine.Mode `json:"mode"`
}

// SaveResponse is the body of POST /graphs/{id}/save.
type SaveResponse struct {
	Revision int               `json:"revision"`
	Files    map[string]string `json:"files"`
	Bytes    int               `json:"bytes"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func stateOf(store *engine.Store, applied bool) StateResponse {
	return StateResponse{
		Applied:   applied,
		History:   store.History(),
		Selection: store.Selection(),
		Latest:    store.Latest(),
		Elements:  len(store.Elements()),
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Library)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := graph.ReadManifest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if m.ID != id {
		s.writeError(w, errors.New(errors.ErrCodeInvalidManifest, "manifest id %q does not match %q", m.ID, id))
		return
	}
	store := s.open(id)
	store.Restore(m)
	writeJSON(w, http.StatusOK, stateOf(store, true))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graph.WriteManifest(store.Manifest(), w); err != nil {
		s.logger.Warn("write manifest", "error", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.drop(r.Context(), id) {
		s.writeError(w, errors.New(errors.ErrCodeGraphNotFound, "graph %s is not open", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	var env engine.Envelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&env); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidAction, err, "decode action"))
		return
	}
	a, err := env.Decode()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := store.Dispatch(a); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(store, true))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if store, ok := s.store(w, r); ok {
		writeJSON(w, http.StatusOK, stateOf(store, store.Undo()))
	}
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if store, ok := s.store(w, r); ok {
		writeJSON(w, http.StatusOK, stateOf(store, store.Redo()))
	}
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	if store, ok := s.store(w, r); ok {
		writeJSON(w, http.StatusOK, SelectionResponse{Selection: store.Selection(), Mode: store.Mode()})
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if store, ok := s.store(w, r); ok {
		writeJSON(w, http.StatusOK, store.History())
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	if s.cfg.Runner == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "saving is not configured"})
		return
	}
	res, err := s.cfg.Runner.Save(r.Context(), persist.Job{Manifest: store.Manifest()})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{
		Revision: res.Revision.Number,
		Files:    res.Files,
		Bytes:    res.Bytes,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// store resolves the {id} session or writes a 404.
func (s *Server) store(w http.ResponseWriter, r *http.Request) (*engine.Store, bool) {
	id := chi.URLParam(r, "id")
	store, ok := s.lookup(r.Context(), id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeGraphNotFound, "graph %s is not open", id))
	}
	return store, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTypeMismatch, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidAction, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidPatch, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
