package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loan-assistant/app"
	"loan-assistant/config"
	"loan-assistant/domain"
	"loan-assistant/logger"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.json")
	profiles := `[{"phone": "9876543210", "name": "Rahul Sharma", "score": 780, "limit": 500000, "salary": 85000, "current_emis": 0}]`
	if err := os.WriteFile(path, []byte(profiles), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Profiles.DataPath = path
	a, err := app.New(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestRunChat_ToSanction(t *testing.T) {
	a := newTestApp(t)
	in := strings.NewReader("I am Rahul\nwedding\n5 lakh\n9876543210\n36 months\nyes\nthis line is never read\n")
	var out bytes.Buffer

	if err := runChat(context.Background(), a.Sessions, a.Extractor, in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transcript := out.String()
	for _, want := range []string{"Nice to meet you, Rahul!", "EMI ₹16488", "(recommended)", "is sanctioned"} {
		if !strings.Contains(transcript, want) {
			t.Errorf("transcript missing %q:\n%s", want, transcript)
		}
	}
	if a.Sanctions.Count() != 1 {
		t.Errorf("expected one sanction, got %d", a.Sanctions.Count())
	}
	if a.Sessions.Len() != 0 {
		t.Error("the chat session should be ended on exit")
	}
}

func TestRunChat_Exit(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer

	if err := runChat(context.Background(), a.Sessions, a.Extractor, strings.NewReader("\nexit\n"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), greeting) {
		t.Errorf("expected greeting, got %q", out.String())
	}
}

func TestRender_EveryClarifyReasonHasAPrompt(t *testing.T) {
	for reason, prompt := range clarifyPrompts {
		if got := render(domain.TurnOutput{Payload: domain.Clarify{Reason: reason}}); got != prompt {
			t.Errorf("%s: expected %q, got %q", reason, prompt, got)
		}
	}
}

func TestRender_Handoff(t *testing.T) {
	got := render(domain.TurnOutput{
		Gate:    domain.GateHumanHandoff,
		Payload: domain.HandoffNotice{Reason: domain.HandoffHumanRequest, From: domain.GateSelectOption},
	})
	if !strings.Contains(got, "loan specialists") {
		t.Errorf("unexpected handoff reply %q", got)
	}
}
