package server

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func initSession(t *testing.T, srv *Server, id string) {
	t.Helper()
	w := do(t, srv, "POST", "/api/sessions/init", `{"session_id":"`+id+`","project":"/tmp/myproject"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("init %s: status = %d; body: %s", id, w.Code, w.Body.String())
	}
}

func addMessage(t *testing.T, srv *Server, id, sender, content string) {
	t.Helper()
	// An hour back keeps the message clear of the window's open end.
	ts := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	body := `{"sender":"` + sender + `","content":"` + content + `","timestamp":"` + ts + `"}`
	w := do(t, srv, "POST", "/api/sessions/"+id+"/messages", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("add message: status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestSessionInit(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/sessions/init", `{"session_id":"test-001","project":"/tmp/myproject"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decode(t, w)
	if resp["session_id"] != "test-001" {
		t.Errorf("session_id = %v, want test-001", resp["session_id"])
	}
	if resp["status"] != "active" {
		t.Errorf("status = %v, want active", resp["status"])
	}
}

func TestSessionInitMissingID(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/sessions/init", `{"project":"/tmp/myproject"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp := decode(t, w); resp["field"] != "session_id" {
		t.Errorf("field = %v, want session_id", resp["field"])
	}
}

func TestAddMessage(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")

	addMessage(t, srv, "test-001", "user", "Another night-shift tonight")
	addMessage(t, srv, "test-001", "assistant", "That sounds tiring.")

	w := do(t, srv, "GET", "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	stats := decode(t, w)
	if stats["messages"] != float64(2) || stats["sessions"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}

	w = do(t, srv, "GET", "/api/sessions", "")
	if resp := decode(t, w); resp["count"] != float64(1) {
		t.Errorf("sessions = %v", resp)
	}
}

func TestAddMessageValidation(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		body  string
		field string
	}{
		{`not json`, "body"},
		{`{"sender":"system","content":"hi"}`, "sender"},
		{`{"sender":"user","content":"   "}`, "content"},
	}
	for _, tt := range tests {
		w := do(t, srv, "POST", "/api/sessions/test-001/messages", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", tt.body, w.Code, http.StatusBadRequest)
			continue
		}
		if resp := decode(t, w); resp["field"] != tt.field {
			t.Errorf("%s: field = %v, want %s", tt.body, resp["field"], tt.field)
		}
	}
}

func TestCompleteSession(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")

	w := do(t, srv, "POST", "/api/sessions/test-001/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if resp := decode(t, w); resp["status"] != "completed" {
		t.Errorf("status = %v, want completed", resp["status"])
	}

	// Completing twice is not an error.
	w = do(t, srv, "POST", "/api/sessions/test-001/complete", "")
	if resp := decode(t, w); w.Code != http.StatusOK || resp["status"] != "ok" {
		t.Errorf("second complete: %d %v", w.Code, resp)
	}
}

func TestEndSession(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")

	w := do(t, srv, "POST", "/api/sessions/test-001/end", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if resp := decode(t, w); resp["status"] != "ended" {
		t.Errorf("status = %v, want ended", resp["status"])
	}
}

func TestStressEndpoint(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")
	for i := 0; i < 4; i++ {
		addMessage(t, srv, "test-001", "user", "Another night-shift tonight")
	}
	addMessage(t, srv, "test-001", "user", "Planted tomatoes in the garden")

	w := do(t, srv, "GET", "/api/analysis/stress?days=7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	// 4 × 9 over 5 messages, scaled by 10.
	if resp["overall_stress_level"] != float64(72) {
		t.Errorf("overall_stress_level = %v, want 72", resp["overall_stress_level"])
	}
	if resp["classification"] != "high" {
		t.Errorf("classification = %v, want high", resp["classification"])
	}
	triggers, _ := resp["top_triggers"].([]any)
	if len(triggers) != 1 {
		t.Fatalf("top_triggers = %v", resp["top_triggers"])
	}
	if tr := triggers[0].(map[string]any); tr["keyword"] != "night-shift" || tr["trend"] != "increasing" {
		t.Errorf("trigger = %v", tr)
	}
}

func TestDomainEndpoints(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")
	addMessage(t, srv, "test-001", "user", "So tired today")

	for _, domain := range []string{"fatigue", "sleep", "cognitive", "emotion", "work-stress"} {
		w := do(t, srv, "GET", "/api/analysis/"+domain+"?days=30", "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d; body: %s", domain, w.Code, w.Body.String())
			continue
		}
		resp := decode(t, w)
		if resp["domain"] != domain {
			t.Errorf("%s: domain = %v", domain, resp["domain"])
		}
		if _, ok := resp["score"].(map[string]any); !ok {
			t.Errorf("%s: score missing: %v", domain, resp)
		}
	}

	w := do(t, srv, "GET", "/api/analysis/fatigue", "")
	resp := decode(t, w)
	if resp["sub_type"] != "physical-dominant" {
		t.Errorf("sub_type = %v, want physical-dominant", resp["sub_type"])
	}
}

func TestCauseEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/analysis/cause?q=why+am+I+tired", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["summary"] != "No clear cause identified" {
		t.Errorf("summary = %v", resp["summary"])
	}
	if hyps, ok := resp["hypotheses"].([]any); !ok || len(hyps) != 0 {
		t.Errorf("hypotheses = %v, want []", resp["hypotheses"])
	}
}

func TestSweepAndProfile(t *testing.T) {
	srv := testServer(t)
	initSession(t, srv, "test-001")
	addMessage(t, srv, "test-001", "user", "Worked overtime again")

	w := do(t, srv, "GET", "/api/analysis/sweep", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sweep status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if domains, _ := resp["domains"].(map[string]any); len(domains) != 5 {
		t.Errorf("domains = %v", resp["domains"])
	}

	w = do(t, srv, "GET", "/api/profile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d; body: %s", w.Code, w.Body.String())
	}
	first := decode(t, w)
	if first["cached"] != false {
		t.Errorf("first profile cached = %v", first["cached"])
	}

	second := decode(t, do(t, srv, "GET", "/api/profile", ""))
	if second["cached"] != true || second["run_id"] != first["run_id"] {
		t.Errorf("second profile = %v", second)
	}

	third := decode(t, do(t, srv, "GET", "/api/profile?refresh=true", ""))
	if third["cached"] != false {
		t.Errorf("refreshed profile cached = %v", third["cached"])
	}
}

func TestGetContext(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/context", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decode(t, w)
	ctx, _ := resp["context"].(string)
	if !strings.Contains(ctx, "Pulse") {
		t.Errorf("context missing header: %s", ctx)
	}
	if !strings.Contains(ctx, "How You've Been") {
		t.Errorf("context missing profile summary: %s", ctx)
	}
}

func TestGetContextWithSessions(t *testing.T) {
	srv := testServer(t)

	initSession(t, srv, "old-001")
	addMessage(t, srv, "old-001", "user", "hello")
	do(t, srv, "POST", "/api/sessions/old-001/complete", "")

	resp := decode(t, do(t, srv, "GET", "/api/context?session_id=new-001", ""))
	ctx, _ := resp["context"].(string)
	if !strings.Contains(ctx, "Recent Sessions") {
		t.Errorf("context missing 'Recent Sessions': %s", ctx)
	}
	if !strings.Contains(ctx, "myproject") || !strings.Contains(ctx, "(1 messages)") {
		t.Errorf("context missing session details: %s", ctx)
	}
}
