package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
	"loan-assistant/service"
)

// OptionsInput asks for the three repayment plans of a principal. With a
// phone the rate and per-plan DTI come from that customer's profile;
// otherwise interest_rate is required.
type OptionsInput struct {
	Amount       decimal.Decimal     `json:"amount"`
	InterestRate decimal.NullDecimal `json:"interest_rate"`
	Phone        string              `json:"phone,omitempty"`
}

type OptionsResponse struct {
	Rate    decimal.Decimal          `json:"rate"`
	Options domain.GoldilocksOptions `json:"options"`
}

type OptionsHandler struct {
	options      *service.OptionService
	underwriting *service.UnderwritingService
	profiles     repository.ProfileStore
	log          *logger.Logger
}

func NewOptionsHandler(
	options *service.OptionService,
	underwriting *service.UnderwritingService,
	profiles repository.ProfileStore,
	log *logger.Logger,
) *OptionsHandler {
	return &OptionsHandler{
		options:      options,
		underwriting: underwriting,
		profiles:     profiles,
		log:          log.With("handler", "OptionsHandler"),
	}
}

func (h *OptionsHandler) GenerateOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input OptionsInput
	if !decodeJSON(w, r, &input) {
		return
	}

	resp, err := h.generate(r, input)
	if err != nil {
		h.log.Warn("Error generating options", "error", err)
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *OptionsHandler) generate(r *http.Request, input OptionsInput) (OptionsResponse, error) {
	if input.Phone == "" {
		if !input.InterestRate.Valid {
			return OptionsResponse{}, fmt.Errorf("%w: interest_rate or phone is required", domain.ErrInvalidInput)
		}
		opts, err := h.options.Generate(input.Amount, input.InterestRate.Decimal)
		return OptionsResponse{Rate: input.InterestRate.Decimal, Options: opts}, err
	}

	profile, err := h.profiles.FetchProfile(r.Context(), domain.NormalizePhone(input.Phone))
	if err != nil {
		return OptionsResponse{}, err
	}
	rate, err := h.underwriting.RateFor(profile)
	if err != nil {
		return OptionsResponse{}, err
	}
	opts, err := h.options.GenerateForProfile(input.Amount, rate, profile.MonthlySalary, profile.CurrentEMIs)
	return OptionsResponse{Rate: rate, Options: opts}, err
}
