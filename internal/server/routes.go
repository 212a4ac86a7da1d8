package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/corpus"
	perrors "github.com/lazypower/pulse/internal/errors"
)

func (s *Server) handleSessionInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Project   string `json:"project"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, perrors.NewValidation("body", "invalid json"))
		return
	}
	if req.SessionID == "" {
		s.writeError(w, r, perrors.NewValidation("session_id", "session_id required"))
		return
	}

	sess, err := s.db.InitSession(r.Context(), req.SessionID, req.Project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sess.SessionID,
		"status":        sess.Status,
		"message_count": sess.MessageCount,
	})
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	sessions, err := s.db.GetRecentSessions(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Sender    corpus.Sender `json:"sender"`
		Content   string        `json:"content"`
		Timestamp *time.Time    `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, perrors.NewValidation("body", "invalid json"))
		return
	}
	if req.Sender != corpus.SenderUser && req.Sender != corpus.SenderAssistant {
		s.writeError(w, r, perrors.NewValidation("sender", "must be user or assistant"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.writeError(w, r, perrors.NewValidation("content", "content required"))
		return
	}

	m := corpus.Message{SessionID: sessionID, Sender: req.Sender, Content: req.Content}
	if req.Timestamp != nil {
		m.Timestamp = *req.Timestamp
	}
	id, err := s.db.AddMessage(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Debug("message captured",
		zap.String("session_id", sessionID),
		zap.String("sender", string(req.Sender)),
		zap.Int64("id", id))
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "id": id})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.db.CompleteSession(r.Context(), sessionID); err != nil {
		// Not finding an active session is not a server error; the session
		// may have already been completed or never existed.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "note": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.db.EndSession(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}
