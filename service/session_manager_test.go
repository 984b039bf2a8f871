package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-assistant/domain"
	"loan-assistant/logger"
)

func newTestManager(t *testing.T, ttl time.Duration) *SessionManager {
	t.Helper()
	m, _ := newTestMachine(t, nil)
	mgr := NewSessionManager(m, ttl, logger.NewNop())
	t.Cleanup(mgr.Stop)
	return mgr
}

func TestSessionManager_Lifecycle(t *testing.T) {
	mgr := newTestManager(t, 0)

	s := mgr.Create()
	if s.ID == "" || s.Gate != domain.GateCollectName {
		t.Fatalf("unexpected new session %+v", s)
	}

	out, err := mgr.Turn(context.Background(), s.ID, factsTurn(domain.ExtractedFacts{Name: "Rahul"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Gate != domain.GateCollectPurpose {
		t.Errorf("expected COLLECT_PURPOSE, got %s", out.Gate)
	}

	got, err := mgr.Get(s.ID)
	if err != nil || got.Facts.Name != "Rahul" {
		t.Errorf("expected stored name, got %+v (%v)", got.Facts, err)
	}

	if err := mgr.End(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := mgr.Get(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := mgr.End(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second end, got %v", err)
	}
}

func TestSessionManager_UnknownSession(t *testing.T) {
	mgr := newTestManager(t, 0)

	if _, err := mgr.Turn(context.Background(), "missing", intentTurn(domain.Confirm())); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	mgr := newTestManager(t, 0)

	a := mgr.Create()
	b := mgr.Create()
	if a.ID == b.ID {
		t.Fatal("session ids must be unique")
	}

	mgr.Turn(context.Background(), a.ID, factsTurn(domain.ExtractedFacts{Name: "Rahul"}))

	got, _ := mgr.Get(b.ID)
	if got.Gate != domain.GateCollectName || got.Facts.Name != "" {
		t.Errorf("turn on one session leaked into another: %+v", got)
	}
}

func TestSessionManager_ConcurrentTurns(t *testing.T) {
	mgr := newTestManager(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := mgr.Create()
			turns := []domain.Turn{
				factsTurn(domain.ExtractedFacts{Name: "Rahul"}),
				factsTurn(domain.ExtractedFacts{Purpose: "travel"}),
				factsTurn(domain.ExtractedFacts{Amount: nullDec("500000")}),
				factsTurn(domain.ExtractedFacts{Phone: "9876543210"}),
			}
			for _, turn := range turns {
				if _, err := mgr.Turn(context.Background(), s.ID, turn); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
			got, _ := mgr.Get(s.ID)
			if got.Gate != domain.GateSelectOption {
				t.Errorf("expected SELECT_OPTION, got %s", got.Gate)
			}
		}()
	}
	wg.Wait()

	if mgr.Len() != 20 {
		t.Errorf("expected 20 sessions, got %d", mgr.Len())
	}
}

func TestSessionManager_SweepIdle(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	now := fixedNow
	mgr.now = func() time.Time { return now }

	stale := mgr.Create()
	now = now.Add(50 * time.Minute)
	fresh := mgr.Create()
	now = now.Add(20 * time.Minute)

	if removed := mgr.Sweep(); removed != 1 {
		t.Fatalf("expected 1 session swept, got %d", removed)
	}
	if _, err := mgr.Get(stale.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("stale session should be gone")
	}
	if _, err := mgr.Get(fresh.ID); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

func TestSessionManager_SweepSkipsBusySessions(t *testing.T) {
	mgr := newTestManager(t, time.Hour)
	now := fixedNow
	mgr.now = func() time.Time { return now }

	busy := mgr.Create()
	now = now.Add(2 * time.Hour)

	entry, err := mgr.entry(busy.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry.mu.Lock()

	swept := make(chan int, 1)
	go func() { swept <- mgr.Sweep() }()

	select {
	case removed := <-swept:
		if removed != 0 {
			t.Errorf("session with a turn in progress was swept")
		}
	case <-time.After(time.Second):
		entry.mu.Unlock()
		t.Fatal("sweep blocked on a busy session")
	}

	created := make(chan struct{})
	go func() {
		mgr.Create()
		close(created)
	}()
	select {
	case <-created:
	case <-time.After(time.Second):
		entry.mu.Unlock()
		t.Fatal("create blocked behind a busy session")
	}
	entry.mu.Unlock()

	if _, err := mgr.Get(busy.ID); err != nil {
		t.Errorf("busy session should survive: %v", err)
	}
	if mgr.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", mgr.Len())
	}
}
