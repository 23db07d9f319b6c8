package worker

import (
	"context"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

// IWorkerRegistrationService records running workers for operators
type IWorkerRegistrationService interface {
	// RegisterWorker records a worker that just connected
	RegisterWorker(ctx context.Context, workerInfo *domain.WorkerInfo) error

	// Heartbeat refreshes the worker's state and last heartbeat time
	Heartbeat(ctx context.Context, workerID string, state domain.SessionState) error

	// GetWorker gets one worker, nil when unknown
	GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error)

	// GetAllWorkers gets all registered workers
	GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error)

	// DeregisterWorker removes a worker that shut down
	DeregisterWorker(ctx context.Context, workerID string) error
}
