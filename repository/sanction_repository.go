package repository

import (
	"context"
	"errors"

	"loan-assistant/domain"
)

var ErrSanctionExists = errors.New("sanction already issued")

type SanctionRepository interface {
	Save(ctx context.Context, sanction domain.SanctionRequest) error
}
