package secondary

import (
	"context"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

type WorkerRepository interface {
	// SaveWorker saves worker information
	SaveWorker(ctx context.Context, worker *domain.WorkerInfo) error

	// GetWorker retrieves worker information by ID, nil when unknown or expired
	GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error)

	// GetAllWorkers lists every worker that reported recently
	GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error)

	// RemoveWorker drops a worker record on shutdown
	RemoveWorker(ctx context.Context, workerID string) error
}
