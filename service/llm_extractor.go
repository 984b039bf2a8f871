package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
)

type OpenAIRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

const extractorSystemPrompt = `You extract structured data from one customer message in an Indian personal-loan chat.
Reply with a single JSON object and nothing else:
{"name": string|null, "purpose": string|null, "phone": string|null,
 "amount": number|null, "salary": number|null,
 "intent": "NONE"|"CONFIRM"|"REFUSE"|"SELECT"|"HUMAN_REQUEST"|"FRUSTRATION"|"NEGOTIATE",
 "tenure_months": number|null, "topic": "RATE"|"AMOUNT"|"EMI"|null}
Amounts are in rupees: "5 lakh" is 500000, "50k" is 50000, "1.5 crore" is 15000000.
"amount" is the loan amount asked for; "salary" is monthly take-home pay.
Use SELECT with tenure_months only when the customer picks a repayment plan.
Never guess: leave a field null when the message does not state it.`

type llmTurn struct {
	Name         string              `json:"name"`
	Purpose      string              `json:"purpose"`
	Phone        string              `json:"phone"`
	Amount       decimal.NullDecimal `json:"amount"`
	Salary       decimal.NullDecimal `json:"salary"`
	Intent       domain.IntentKind   `json:"intent"`
	TenureMonths int                 `json:"tenure_months"`
	Topic        string              `json:"topic"`
}

// LLMExtractor asks an OpenAI-compatible chat completion endpoint for the
// facts and intent of a message. Without an API key, or when the call or
// its JSON fails, it answers with the fallback extractor instead.
type LLMExtractor struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
	fallback   Extractor
	log        *logger.Logger
}

func NewLLMExtractor(cfg config.LLMConfig, fallback Extractor, log *logger.Logger) *LLMExtractor {
	return &LLMExtractor{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.URL,
		model:   cfg.Model,
		enabled: cfg.APIKey != "",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		fallback: fallback,
		log:      log.With("service", "LLMExtractor"),
	}
}

func (e *LLMExtractor) Enabled() bool {
	return e.enabled
}

func (e *LLMExtractor) Extract(ctx context.Context, text string, gate domain.Gate) (domain.Turn, error) {
	if !e.enabled {
		return e.fallback.Extract(ctx, text, gate)
	}

	prompt := fmt.Sprintf("Conversation step: %s\nCustomer message: %q", gate, text)
	content, err := e.callLLM(ctx, prompt)
	if err != nil {
		e.log.Warn("llm extraction failed, using rules", "gate", gate.String(), "error", err)
		return e.fallback.Extract(ctx, text, gate)
	}

	turn, err := parseLLMTurn(content)
	if err != nil {
		e.log.Warn("llm returned unusable json, using rules", "gate", gate.String(), "error", err)
		return e.fallback.Extract(ctx, text, gate)
	}
	return turn, nil
}

func parseLLMTurn(content string) (domain.Turn, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw llmTurn
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.Turn{}, err
	}

	turn := domain.Turn{
		Facts: domain.ExtractedFacts{
			Name:    strings.TrimSpace(raw.Name),
			Purpose: strings.TrimSpace(raw.Purpose),
			Amount:  positiveOrNull(raw.Amount),
			Salary:  positiveOrNull(raw.Salary),
		},
		Intent: domain.NoIntent(),
	}
	if phone := domain.NormalizePhone(raw.Phone); domain.ValidMobile(phone) {
		turn.Facts.Phone = phone
	}

	switch raw.Intent {
	case domain.IntentConfirm, domain.IntentRefuse, domain.IntentHumanRequest, domain.IntentFrustration:
		turn.Intent = domain.Intent{Kind: raw.Intent}
	case domain.IntentSelect:
		if raw.TenureMonths > 0 {
			turn.Intent = domain.SelectTenure(raw.TenureMonths)
		}
	case domain.IntentNegotiate:
		topic := domain.NegotiationTopic(strings.ToUpper(raw.Topic))
		switch topic {
		case domain.TopicRate, domain.TopicAmount, domain.TopicEMI:
		default:
			topic = domain.TopicRate
		}
		turn.Intent = domain.Negotiate(topic)
	}
	return turn, nil
}

func positiveOrNull(d decimal.NullDecimal) decimal.NullDecimal {
	if d.Valid && d.Decimal.IsPositive() {
		return d
	}
	return decimal.NullDecimal{}
}

func (e *LLMExtractor) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := OpenAIRequest{
		Model: e.model,
		Messages: []Message{
			{
				Role:    "system",
				Content: extractorSystemPrompt,
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:      200,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", err
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return openAIResp.Choices[0].Message.Content, nil
}
