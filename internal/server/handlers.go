package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"diderot/internal/archive"
	"diderot/internal/core"

	"github.com/go-chi/chi/v5"
)

// HealthResponse is the body of /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ReportListResponse is the body of GET /api/reports
type ReportListResponse struct {
	Dates []string `json:"dates"`
}

// ReportResponse is the body of a single report lookup or generation
type ReportResponse struct {
	Date   string            `json:"date"`
	State  archive.State     `json:"state"`
	Report *core.DailyReport `json:"report"`
}

// ErrorResponse carries an error message
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleListReports handles GET /api/reports
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	dates, err := s.reports.List()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ReportListResponse{Dates: dates})
}

// handleGetReport handles GET /api/reports/{date}. It never generates.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	state, report, err := s.reports.Lookup(date, false)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if state != archive.StateCached {
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "no report found for " + date})
		return
	}
	s.respondJSON(w, http.StatusOK, ReportResponse{Date: date, State: state, Report: report})
}

// handleGenerateReport handles POST /api/reports/{date}/generate?force=true
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	report, state, err := s.reports.Get(r.Context(), date, force)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ReportResponse{Date: date, State: state, Report: report})
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, archive.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrCacheIO):
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.respondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}
