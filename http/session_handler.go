package http

import (
	"fmt"
	"net/http"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/service"
)

// TurnInput carries either free text, read by the extractor, or an
// already structured turn.
type TurnInput struct {
	Text string       `json:"text,omitempty"`
	Turn *domain.Turn `json:"turn,omitempty"`
}

type SessionHandler struct {
	sessions  *service.SessionManager
	extractor service.Extractor
	log       *logger.Logger
}

func NewSessionHandler(sessions *service.SessionManager, extractor service.Extractor, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		extractor: extractor,
		log:       log.With("handler", "SessionHandler"),
	}
}

// CreateSession handles POST /sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, h.sessions.Create())
}

// GetSession handles GET /sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, s)
}

// EndSession handles DELETE /sessions/{id}.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.sessions.End(r.PathValue("id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostTurn handles POST /sessions/{id}/turns.
func (h *SessionHandler) PostTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input TurnInput
	if !decodeJSON(w, r, &input) {
		return
	}

	id := r.PathValue("id")
	turn, err := h.turnFor(r, id, input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	out, err := h.sessions.Turn(r.Context(), id, turn)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, out)
}

func (h *SessionHandler) turnFor(r *http.Request, id string, input TurnInput) (domain.Turn, error) {
	switch {
	case input.Turn != nil:
		return *input.Turn, nil
	case input.Text != "":
		s, err := h.sessions.Get(id)
		if err != nil {
			return domain.Turn{}, err
		}
		return h.extractor.Extract(r.Context(), input.Text, s.Gate)
	default:
		return domain.Turn{}, fmt.Errorf("%w: text or turn is required", domain.ErrInvalidInput)
	}
}
