package secondary

import (
	"context"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

type JobOutcomeRepository interface {
	// SaveOutcome appends one finished job. Saving the same job and finish time twice is a no-op.
	SaveOutcome(ctx context.Context, outcome *domain.JobOutcome) error

	// ListOutcomes returns the newest outcomes first
	ListOutcomes(ctx context.Context, filter domain.OutcomeFilter) ([]*domain.JobOutcome, error)
}
