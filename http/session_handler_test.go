package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-assistant/logger"
	"loan-assistant/service"
)

type turnResponse struct {
	Gate string `json:"gate"`
	Kind string `json:"kind"`
}

func newTestSessionHandler(t *testing.T) *SessionHandler {
	t.Helper()
	svc := newTestServices(t)
	return NewSessionHandler(svc.sessions, service.NewRuleExtractor(svc.options.Tenures()), logger.NewNop())
}

func createSession(t *testing.T, h *SessionHandler) string {
	t.Helper()
	w := httptest.NewRecorder()
	h.CreateSession(w, httptest.NewRequest(http.MethodPost, "/sessions", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var created struct {
		ID   string `json:"id"`
		Gate string `json:"gate"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if created.ID == "" || created.Gate != "COLLECT_NAME" {
		t.Fatalf("unexpected session %+v", created)
	}
	return created.ID
}

func postTurn(t *testing.T, h *SessionHandler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/turns", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", id)

	w := httptest.NewRecorder()
	h.PostTurn(w, req)
	return w
}

func TestSessionHandler_FreeTextConversation(t *testing.T) {
	h := newTestSessionHandler(t)
	id := createSession(t, h)

	steps := []struct {
		text string
		gate string
		kind string
	}{
		{"Hi, I am Rahul", "COLLECT_PURPOSE", "fact_accepted"},
		{"for a wedding", "COLLECT_AMOUNT", "fact_accepted"},
		{"5 lakh please", "PHONE_VERIFY", "fact_accepted"},
		{"my number is 9876543210", "SELECT_OPTION", "options_presented"},
		{"36 months", "VERBAL_AGREEMENT", "plan_selected"},
		{"yes, go ahead", "GENERATE_DOCUMENT", "final_approval"},
	}
	for _, step := range steps {
		body, _ := json.Marshal(TurnInput{Text: step.text})
		w := postTurn(t, h, id, string(body))
		if w.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d: %s", step.text, w.Code, w.Body.String())
		}

		var out turnResponse
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatalf("%q: invalid response body: %v", step.text, err)
		}
		if out.Gate != step.gate || out.Kind != step.kind {
			t.Fatalf("%q: expected %s/%s, got %s/%s", step.text, step.gate, step.kind, out.Gate, out.Kind)
		}
	}
}

func TestSessionHandler_StructuredTurn(t *testing.T) {
	h := newTestSessionHandler(t)
	id := createSession(t, h)

	w := postTurn(t, h, id, `{"turn": {"facts": {"name": "Priya"}, "intent": {"kind": "NONE"}}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.GetSession(rec, req)

	var snapshot struct {
		Gate  string `json:"gate"`
		Facts struct {
			Name string `json:"name"`
		} `json:"facts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if snapshot.Gate != "COLLECT_PURPOSE" || snapshot.Facts.Name != "Priya" {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
}

func TestSessionHandler_EmptyTurn(t *testing.T) {
	h := newTestSessionHandler(t)
	id := createSession(t, h)

	if w := postTurn(t, h, id, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_UnknownSession(t *testing.T) {
	h := newTestSessionHandler(t)

	if w := postTurn(t, h, "missing", `{"text": "hello"}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.GetSession(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSessionHandler_EndSession(t *testing.T) {
	h := newTestSessionHandler(t)
	id := createSession(t, h)

	del := func() int {
		req := httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		h.EndSession(w, req)
		return w.Code
	}

	if code := del(); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if code := del(); code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", code)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	h := newTestSessionHandler(t)

	w := httptest.NewRecorder()
	h.CreateSession(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
