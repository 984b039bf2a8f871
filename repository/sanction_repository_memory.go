package repository

import (
	"context"
	"sync"

	"loan-assistant/domain"
)

// SanctionRepositoryMemory keeps issued sanctions in memory, one per
// session.
type SanctionRepositoryMemory struct {
	mu   sync.Mutex
	data map[string]domain.SanctionRequest
}

func NewSanctionRepositoryMemory() *SanctionRepositoryMemory {
	return &SanctionRepositoryMemory{
		data: make(map[string]domain.SanctionRequest),
	}
}

// Save stores the sanction. A second save for the same session fails with
// ErrSanctionExists.
func (r *SanctionRepositoryMemory) Save(ctx context.Context, sanction domain.SanctionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[sanction.SessionID]; ok {
		return ErrSanctionExists
	}
	r.data[sanction.SessionID] = sanction
	return nil
}

func (r *SanctionRepositoryMemory) Get(sessionID string) (domain.SanctionRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[sessionID]
	return s, ok
}

func (r *SanctionRepositoryMemory) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
