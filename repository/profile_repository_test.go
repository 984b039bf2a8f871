package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loan-assistant/domain"
	"loan-assistant/logger"
)

func intPtr(v int) *int { return &v }

func sampleProfiles() []domain.CreditProfile {
	return []domain.CreditProfile{
		{
			Phone:            "+91 98765 43210",
			Name:             "Rahul Sharma",
			Score:            intPtr(780),
			PreApprovedLimit: decimal.NewFromInt(500000),
		},
	}
}

func TestProfileRepositoryMemory_NormalizesPhones(t *testing.T) {
	repo := NewProfileRepositoryMemory(sampleProfiles())

	for _, phone := range []string{"9876543210", "+919876543210", "09876543210", "98765-43210"} {
		p, err := repo.FetchProfile(context.Background(), phone)
		if err != nil {
			t.Fatalf("phone %q: unexpected error: %v", phone, err)
		}
		if p.Name != "Rahul Sharma" {
			t.Errorf("phone %q: expected Rahul Sharma, got %s", phone, p.Name)
		}
	}
}

func TestProfileRepositoryMemory_NotFound(t *testing.T) {
	repo := NewProfileRepositoryMemory(sampleProfiles())

	_, err := repo.FetchProfile(context.Background(), "9000000000")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileRepositoryMemory_CancelledContext(t *testing.T) {
	repo := NewProfileRepositoryMemory(sampleProfiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.FetchProfile(ctx, "9876543210"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadProfilesFile(t *testing.T) {
	repo, err := LoadProfilesFile(filepath.Join("..", "data", "customers.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() < 5 {
		t.Fatalf("expected at least 5 profiles, got %d", repo.Len())
	}

	p, err := repo.FetchProfile(context.Background(), "9123456780")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MonthlySalary.Valid {
		t.Errorf("expected unknown salary for Priya Patel")
	}
	if !p.CurrentEMIs.Equal(decimal.NewFromInt(7025)) {
		t.Errorf("expected current emis 7025, got %s", p.CurrentEMIs)
	}
}

type countingStore struct {
	calls int
	inner ProfileStore
}

func (c *countingStore) FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error) {
	c.calls++
	return c.inner.FetchProfile(ctx, phone)
}

func TestCachedProfileStore_ReadThrough(t *testing.T) {
	inner := &countingStore{inner: NewProfileRepositoryMemory(sampleProfiles())}
	cache := NewMockCache()
	store := NewCachedProfileStore(inner, cache, time.Minute, logger.NewNop())

	for i := 0; i < 3; i++ {
		p, err := store.FetchProfile(context.Background(), "+91 98765 43210")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score, _ := p.CreditScore(); score != 780 {
			t.Errorf("expected score 780, got %d", score)
		}
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 backing lookup, got %d", inner.calls)
	}
	if _, ok := cache.Data["profile:9876543210"]; !ok {
		t.Errorf("expected profile cached under normalized key")
	}
	if cache.LastTTL != time.Minute {
		t.Errorf("expected ttl 1m, got %s", cache.LastTTL)
	}
}

func TestCachedProfileStore_NotFoundIsNotCached(t *testing.T) {
	cache := NewMockCache()
	store := NewCachedProfileStore(NewProfileRepositoryMemory(nil), cache, time.Minute, logger.NewNop())

	if _, err := store.FetchProfile(context.Background(), "9876543210"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if len(cache.Data) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(cache.Data))
	}
}

func TestSanctionRepositoryMemory_OncePerSession(t *testing.T) {
	repo := NewSanctionRepositoryMemory()
	s := domain.SanctionRequest{SessionID: "s-1", LoanID: "LV202610191234"}

	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Save(context.Background(), s); !errors.Is(err, ErrSanctionExists) {
		t.Errorf("expected ErrSanctionExists, got %v", err)
	}
	if repo.Count() != 1 {
		t.Errorf("expected 1 sanction, got %d", repo.Count())
	}
}
