// internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"duck/internal/errors"
	"duck/internal/history"
	"duck/internal/logging"
	"duck/internal/validation"

	"go.uber.org/zap"
)

// Source supplies the history served by the API.
type Source interface {
	Load() (*history.History, error)
}

// FileSource reads the log file on every call, so commits recorded by other
// processes show up without a restart.
type FileSource struct {
	Path string
}

func (s FileSource) Load() (*history.History, error) {
	return history.Load(s.Path)
}

// CommitSummary is one line of GET /api/log.
type CommitSummary struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Files   int    `json:"files"`
	Changed int    `json:"changed"`
}

type HistoryHandler struct {
	source Source
	logger *logging.Logger
}

func NewHistoryHandler(source Source, logger *logging.Logger) *HistoryHandler {
	if logger == nil {
		logger = &logging.Logger{Logger: zap.NewNop()}
	}
	return &HistoryHandler{source: source, logger: logger}
}

// Register mounts the handlers on mux.
func (h *HistoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("GET /api/head", h.Head)
	mux.HandleFunc("GET /api/log", h.Log)
	mux.HandleFunc("GET /api/commits/{id}", h.Commit)
	mux.HandleFunc("GET /api/commits/{id}/changes/{path...}", h.Change)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HistoryHandler) Head(w http.ResponseWriter, r *http.Request) {
	hist, ok := h.load(w, r)
	if !ok {
		return
	}
	resp := map[string]any{
		"head":    hist.Head,
		"commits": hist.Len(),
	}
	if entry := hist.HeadEntry(); entry != nil {
		resp["message"] = entry.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HistoryHandler) Log(w http.ResponseWriter, r *http.Request) {
	hist, ok := h.load(w, r)
	if !ok {
		return
	}

	out := make([]CommitSummary, 0, hist.Len())
	for _, c := range hist.Entries() {
		out = append(out, CommitSummary{
			ID:      c.ID,
			Message: c.Entry.Message,
			Files:   len(c.Entry.NewFiles),
			Changed: len(c.Entry.Changes),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HistoryHandler) Commit(w http.ResponseWriter, r *http.Request) {
	hist, ok := h.load(w, r)
	if !ok {
		return
	}

	entry, _, err := resolve(hist, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *HistoryHandler) Change(w http.ResponseWriter, r *http.Request) {
	hist, ok := h.load(w, r)
	if !ok {
		return
	}

	entry, id, err := resolve(hist, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	path := r.PathValue("path")
	if err := validation.Path(path); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, ok := entry.Changes[path]
	if !ok {
		h.writeError(w, r, errors.NotFound(fmt.Sprintf("no change to %s in commit %s", path, id)))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func resolve(hist *history.History, ref string) (*history.CommitEntry, string, error) {
	id, err := hist.Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	entry, err := hist.Get(id)
	if err != nil {
		return nil, "", err
	}
	return entry, id, nil
}

func (h *HistoryHandler) load(w http.ResponseWriter, r *http.Request) (*history.History, bool) {
	hist, err := h.source.Load()
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return hist, true
}

func (h *HistoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		h.logger.WithRequestID(r.Context()).Error("request failed", zap.Error(err))
		apiErr = errors.Internal("internal server error")
	}
	writeJSON(w, apiErr.Code, apiErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
