package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"loan-assistant/domain"
)

// ProfileRepositoryMemory serves profiles from a map keyed by normalized
// phone. The map is built once and only read afterwards.
type ProfileRepositoryMemory struct {
	data map[string]domain.CreditProfile
}

func NewProfileRepositoryMemory(profiles []domain.CreditProfile) *ProfileRepositoryMemory {
	data := make(map[string]domain.CreditProfile, len(profiles))
	for _, p := range profiles {
		p.Phone = domain.NormalizePhone(p.Phone)
		data[p.Phone] = p
	}
	return &ProfileRepositoryMemory{data: data}
}

// LoadProfilesFile reads a JSON array of profiles, the format of
// data/customers.json.
func LoadProfilesFile(path string) (*ProfileRepositoryMemory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var profiles []domain.CreditProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return NewProfileRepositoryMemory(profiles), nil
}

func (r *ProfileRepositoryMemory) FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.CreditProfile{}, err
	}
	p, ok := r.data[domain.NormalizePhone(phone)]
	if !ok {
		return domain.CreditProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (r *ProfileRepositoryMemory) Len() int {
	return len(r.data)
}
