package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	perrors "github.com/lazypower/pulse/internal/errors"
)

// daysParam reads ?days=N. Absent means the configured default.
func daysParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perrors.NewValidation("timeframe_days", "must be an integer")
	}
	return n, nil
}

func (s *Server) handleStress(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.engine.RunStressTriggerAnalysis(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCause(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.engine.RunCauseAnalysis(r.Context(), r.URL.Query().Get("q"), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.RunFullSweep(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.engine.RunDomainAnalysis(r.Context(), chi.URLParam(r, "domain"), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	p, err := s.engine.RunSelfProfile(r.Context(), refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
