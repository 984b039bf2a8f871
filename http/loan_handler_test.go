package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
	"loan-assistant/service"
)

func newTestLoanHandler() *LoanHandler {
	svc := service.NewLoanService(service.NewCalculator(2), repository.NewMockCache(), time.Minute, logger.NewNop())
	return NewLoanHandler(svc, logger.NewNop())
}

func TestCalculateLoanHandler_OK(t *testing.T) {
	handler := newTestLoanHandler()

	body := []byte(`{
		"amount": 10000,
		"interest_rate": 12,
		"term_months": 24
	}`)

	req := httptest.NewRequest(
		http.MethodPost,
		"/loan/calculate",
		bytes.NewBuffer(body),
	)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	handler.CalculateLoan(w, req)

	resp := w.Result()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.LoanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !result.MonthlyPayment.Equal(dec("470.73")) {
		t.Errorf("expected EMI 470.73, got %s", result.MonthlyPayment)
	}
}

func TestCalculateLoanHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestLoanHandler()

	req := httptest.NewRequest(http.MethodGet, "/loan/calculate", nil)
	w := httptest.NewRecorder()

	handler.CalculateLoan(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestCalculateLoanHandler_BadRequest(t *testing.T) {
	handler := newTestLoanHandler()

	cases := map[string]string{
		"malformed":     `{invalid-json}`,
		"zero amount":   `{"amount": 0, "interest_rate": 12, "term_months": 24}`,
		"zero term":     `{"amount": 10000, "interest_rate": 12, "term_months": 0}`,
		"negative rate": `{"amount": 10000, "interest_rate": -1, "term_months": 24}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(
			http.MethodPost,
			"/loan/calculate",
			bytes.NewBufferString(body),
		)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		handler.CalculateLoan(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestCalculateLoanHandler_RequiresJSON(t *testing.T) {
	handler := newTestLoanHandler()

	req := httptest.NewRequest(http.MethodPost, "/loan/calculate", bytes.NewBufferString(`amount=10000`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handler.CalculateLoan(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}
