package observer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable code and a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	engine.Snapshot
	Digest string `json:"digest"`
	Policy string `json:"policy"`
}

// BufferRequest is the body of POST /buffers.
type BufferRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// HaltRequest is the optional body of POST /switches/{letter}/halt.
type HaltRequest struct {
	Ticks int `json:"ticks"`
}

// TickResponse is the body of POST /tick.
type TickResponse struct {
	Ran    bool              `json:"ran"`
	Report engine.TickReport `json:"report"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeError(w, status, code, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StateResponse{
		Snapshot: s.eng.Snapshot(),
		Digest:   s.chain.Head(),
		Policy:   s.eng.Policy().String(),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m := s.eng.Metrics().Summary()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep := s.eng.LastReport()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	rep, ran := s.Step()
	writeJSON(w, http.StatusOK, TickResponse{Ran: ran, Report: rep})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.eng.Reset()
	if err == nil {
		s.chain = canon.Chain{}
	}
	s.mu.Unlock()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info("simulation reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleToggleBuffer(w http.ResponseWriter, r *http.Request) {
	var req BufferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body: "+err.Error())
		return
	}
	s.mu.Lock()
	err := s.eng.ToggleBufferTile(req.Row, req.Col)
	var sym string
	if err == nil {
		sym = string(s.eng.Grid().Symbol(grid.Pos{Row: req.Row, Col: req.Col}))
	}
	s.mu.Unlock()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"row": req.Row, "col": req.Col, "symbol": sym})
}

func switchParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	letter := strings.ToUpper(chi.URLParam(r, "letter"))
	id, ok := grid.SwitchID(letter)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid switch letter "+letter)
		return 0, false
	}
	return id, true
}

func (s *Server) handleToggleSwitch(w http.ResponseWriter, r *http.Request) {
	id, ok := switchParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.eng.ToggleSwitch(id)
	var view map[string]any
	if err == nil {
		sw, _ := s.eng.Switch(id)
		view = map[string]any{"switch": sw.Letter(), "state": sw.State, "label": sw.Label()}
	}
	s.mu.Unlock()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleHalt(w http.ResponseWriter, r *http.Request) {
	id, ok := switchParam(w, r)
	if !ok {
		return
	}
	var req HaltRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body: "+err.Error())
		return
	}
	s.mu.Lock()
	err := s.eng.TriggerEmergencyHalt(id, req.Ticks)
	remaining := s.eng.HaltRemaining(id)
	s.mu.Unlock()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"switch": string(grid.SwitchLetter(id)), "ticks": remaining})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "NO_STORE", "no run store attached")
		return false
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	m, err := s.store.ReadMetrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Summary())
}
