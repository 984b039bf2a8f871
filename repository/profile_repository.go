package repository

import (
	"context"

	"loan-assistant/domain"
)

// ProfileStore looks up pre-approved customer profiles by phone. It is
// read-only and safe for concurrent use. Implementations return
// domain.ErrProfileNotFound for unknown numbers.
type ProfileStore interface {
	FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error)
}
