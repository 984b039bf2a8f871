package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
)

func llmServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req OpenAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Error("expected json_object response format")
		}

		w.WriteHeader(status)
		resp := OpenAIResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message Message `json:"message"`
		}{Message: Message{Role: "assistant", Content: content}})
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestLLM(url, key string) *LLMExtractor {
	cfg := config.LLMConfig{APIKey: key, URL: url, Model: "test-model", Timeout: time.Second}
	return NewLLMExtractor(cfg, NewRuleExtractor([3]int{24, 36, 60}), logger.NewNop())
}

func TestLLMExtractor_ParsesModelReply(t *testing.T) {
	srv := llmServer(t, http.StatusOK, "```json\n{\"name\": null, \"phone\": \"+91 98765 43210\", \"amount\": 500000, \"salary\": null, \"intent\": \"SELECT\", \"tenure_months\": 36}\n```")
	e := newTestLLM(srv.URL, "test-key")

	turn, err := e.Extract(context.Background(), "36 months for 5 lakh, my number is +91 98765 43210", domain.GateSelectOption)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Facts.Phone != "9876543210" {
		t.Errorf("expected normalized phone, got %q", turn.Facts.Phone)
	}
	if !turn.Facts.Amount.Valid || !turn.Facts.Amount.Decimal.Equal(dec("500000")) {
		t.Errorf("expected amount 500000, got %v", turn.Facts.Amount)
	}
	if turn.Facts.Salary.Valid {
		t.Error("null salary must stay unset")
	}
	if turn.Intent != domain.SelectTenure(36) {
		t.Errorf("expected SELECT 36, got %+v", turn.Intent)
	}
}

func TestLLMExtractor_FallsBackToRules(t *testing.T) {
	cases := map[string]*LLMExtractor{
		"disabled":  newTestLLM("http://127.0.0.1:0", ""),
		"api error": newTestLLM(llmServer(t, http.StatusInternalServerError, "").URL, "test-key"),
		"bad json":  newTestLLM(llmServer(t, http.StatusOK, "sure! here you go").URL, "test-key"),
	}
	for name, e := range cases {
		turn, err := e.Extract(context.Background(), "I need 5 lakh", domain.GateCollectAmount)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !turn.Facts.Amount.Valid || !turn.Facts.Amount.Decimal.Equal(dec("500000")) {
			t.Errorf("%s: expected rule-based amount 500000, got %v", name, turn.Facts.Amount)
		}
	}
}

func TestParseLLMTurn_NormalizesIntent(t *testing.T) {
	cases := map[string]domain.Intent{
		`{"intent": "NEGOTIATE", "topic": "emi"}`: domain.Negotiate(domain.TopicEMI),
		`{"intent": "NEGOTIATE"}`:                 domain.Negotiate(domain.TopicRate),
		`{"intent": "SELECT"}`:                    domain.NoIntent(),
		`{"intent": "HUMAN_REQUEST"}`:             domain.HumanRequest(),
		`{"intent": "DANCE"}`:                     domain.NoIntent(),
		`{"intent": "CONFIRM", "amount": -5}`:     domain.Confirm(),
	}
	for content, want := range cases {
		turn, err := parseLLMTurn(content)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", content, err)
		}
		if turn.Intent != want {
			t.Errorf("%s: expected %+v, got %+v", content, want, turn.Intent)
		}
		if turn.Facts.Amount.Valid {
			t.Errorf("%s: non-positive amount must be dropped", content)
		}
	}
}
