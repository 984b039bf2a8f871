package http

import (
	"net/http"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/service"
)

type LoanHandler struct {
	service *service.LoanService
	log     *logger.Logger
}

func NewLoanHandler(service *service.LoanService, log *logger.Logger) *LoanHandler {
	return &LoanHandler{service: service, log: log.With("handler", "LoanHandler")}
}

// CalculateLoan answers POST /loan/calculate with the EMI, total payment
// and total interest of a plain amortized loan.
func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.LoanInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.CalculateLoan(r.Context(), input)
	if err != nil {
		h.log.Warn("Error calculating loan", "error", err)
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, result)
}
