package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
	"loan-assistant/service"
)

type EligibilityInput struct {
	Phone  string              `json:"phone"`
	Amount decimal.Decimal     `json:"amount"`
	Salary decimal.NullDecimal `json:"salary"`
}

type EligibilityResponse struct {
	Profile      domain.ProfileSummary    `json:"profile"`
	Result       domain.EligibilityResult `json:"result"`
	CounterOffer *domain.CounterOffer     `json:"counter_offer,omitempty"`
}

// EligibilityHandler runs one underwriting decision outside a
// conversation, for back-office checks.
type EligibilityHandler struct {
	underwriting *service.UnderwritingService
	profiles     repository.ProfileStore
	log          *logger.Logger
}

func NewEligibilityHandler(underwriting *service.UnderwritingService, profiles repository.ProfileStore, log *logger.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		underwriting: underwriting,
		profiles:     profiles,
		log:          log.With("handler", "EligibilityHandler"),
	}
}

func (h *EligibilityHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input EligibilityInput
	if !decodeJSON(w, r, &input) {
		return
	}

	profile, err := h.profiles.FetchProfile(r.Context(), domain.NormalizePhone(input.Phone))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	rate, err := h.underwriting.RateFor(profile)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.underwriting.Evaluate(profile, domain.LoanRequest{Amount: input.Amount}, input.Salary)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Info("eligibility checked", "phone", input.Phone, "outcome", string(result.Outcome()))
	writeJSON(w, h.log, http.StatusOK, EligibilityResponse{
		Profile:      profile.Summary(rate),
		Result:       result,
		CounterOffer: service.CounterOfferFor(result),
	})
}
