package service

import (
	"context"
	"fmt"

	"loan-assistant/domain"
	"loan-assistant/logger"
	"loan-assistant/repository"
)

// DocumentIssuer hands a sanction to whatever renders the letter. The gate
// machine calls it at most once per session.
type DocumentIssuer interface {
	Issue(ctx context.Context, sanction domain.SanctionRequest) error
}

// SanctionIssuer records issued sanctions in a repository. Rendering the
// letter itself happens downstream.
type SanctionIssuer struct {
	repo repository.SanctionRepository
	log  *logger.Logger
}

func NewSanctionIssuer(repo repository.SanctionRepository, log *logger.Logger) *SanctionIssuer {
	return &SanctionIssuer{repo: repo, log: log.With("service", "SanctionIssuer")}
}

func (i *SanctionIssuer) Issue(ctx context.Context, sanction domain.SanctionRequest) error {
	if err := i.repo.Save(ctx, sanction); err != nil {
		return fmt.Errorf("save sanction %s: %w", sanction.LoanID, err)
	}
	i.log.Info("sanction issued",
		"loan_id", sanction.LoanID,
		"session", sanction.SessionID,
		"phone", sanction.Profile.Phone,
		"amount", sanction.ApprovedAmount.String(),
		"tenure", sanction.Plan.TenureMonths,
	)
	return nil
}
