package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/oaktree/internal/loader"
)

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /procedures", s.handleSubmit)
	mux.HandleFunc("POST /runs/{id}/step", s.handleStep)
	mux.HandleFunc("POST /runs/{id}/run", s.handleRun)
	mux.HandleFunc("POST /runs/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /runs/{id}/halt", s.handleHalt)
	mux.HandleFunc("POST /runs/{id}/breakpoints", s.handleSetBreakpoint)
	mux.HandleFunc("GET /runs/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /runs/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /ws", s.handleWS)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleSubmit accepts a YAML procedure body, builds and registers it,
// and returns its run ID (§4.12).
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	dirLoader := loader.NewDirLoader(s.loaderDir, s.logger)
	p, err := loader.Load(body, s.logger, dirLoader)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := s.registry.Submit(p)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"run_id": runID})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	st, err := s.registry.Step(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": st.String()})
}

// handleRun starts (or resumes) ExecuteProcedure asynchronously, returning
// immediately; progress and completion surface over GET status/history
// and the WebSocket stream.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.RunAsync(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "running"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run")
		return
	}
	rn.runner.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "pause requested"})
}

func (s *Server) handleHalt(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Halt(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "halted"})
}

type breakpointRequest struct {
	NodeID string `json:"node_id"`
	Remove bool   `json:"remove"`
}

func (s *Server) handleSetBreakpoint(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run")
		return
	}
	var req breakpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.NodeID) == "" {
		writeError(w, http.StatusBadRequest, "node_id required")
		return
	}
	if req.Remove {
		rn.runner.RemoveBreakpoint(req.NodeID)
	} else {
		rn.runner.SetBreakpoint(req.NodeID)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"breakpoints": rn.runner.GetBreakpoints()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, running, finished, err := s.registry.RunStatus(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	rn, _ := s.registry.Get(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      id,
		"status":      st.String(),
		"running":     running,
		"finished":    finished,
		"breakpoints": rn.runner.GetBreakpoints(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.registry.Get(id); !ok {
		writeError(w, http.StatusNotFound, "unknown run")
		return
	}
	if s.registry.store == nil {
		writeError(w, http.StatusNotImplemented, "history is disabled")
		return
	}
	events, err := s.registry.store.History(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}
