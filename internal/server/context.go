package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxContextAdvice = 3

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	ctx := s.buildContext(r.Context(), r.URL.Query().Get("session_id"))
	writeJSON(w, http.StatusOK, map[string]string{
		"context": ctx,
	})
}

// buildContext renders the markdown injected at session start: the
// self-profile summary, a few recommendations and recent sessions.
func (s *Server) buildContext(ctx context.Context, currentSessionID string) string {
	var b strings.Builder

	b.WriteString("<context>\n## Pulse: Wellbeing Snapshot\n")

	p, err := s.engine.RunSelfProfile(ctx, false)
	if err != nil {
		s.logger.Warn("context: self-profile unavailable", zap.Error(err))
	} else if p.Summary != "" {
		b.WriteString("\n### How You've Been\n")
		b.WriteString(p.Summary)
		b.WriteString("\n")

		advice := p.Recommendations
		if len(advice) > maxContextAdvice {
			advice = advice[:maxContextAdvice]
		}
		if len(advice) > 0 {
			b.WriteString("\n### Worth Keeping In Mind\n")
			for _, a := range advice {
				fmt.Fprintf(&b, "- %s\n", a)
			}
		}
	}

	sessions, err := s.db.GetRecentSessions(ctx, 5)
	if err == nil && len(sessions) > 0 {
		var lines []string
		for _, sess := range sessions {
			if sess.SessionID == currentSessionID {
				continue
			}
			ts := time.UnixMilli(sess.StartedAt).Format("2006-01-02 15:04")
			project := sess.Project
			if project == "" {
				project = "unknown"
			} else {
				project = filepath.Base(project)
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s: %s (%d messages)\n", ts, project, sess.Status, sess.MessageCount))
		}
		if len(lines) > 0 {
			b.WriteString("\n### Recent Sessions\n")
			b.WriteString(strings.Join(lines, ""))
		}
	}

	b.WriteString("</context>")
	return b.String()
}
