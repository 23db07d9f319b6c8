package worker

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

var _ IWorkerRegistrationService = &WorkerRegistrationService{}

// WorkerRegistrationService implements IWorkerRegistrationService over a repository
type WorkerRegistrationService struct {
	workerRepo secondary.WorkerRepository
	logger     primary.Logger
}

// NewWorkerRegistrationService creates a new worker registration service
func NewWorkerRegistrationService(workerRepo secondary.WorkerRepository, logger primary.Logger) *WorkerRegistrationService {
	return &WorkerRegistrationService{
		workerRepo: workerRepo,
		logger:     logger,
	}
}

// RegisterWorker records a worker that just connected
func (s *WorkerRegistrationService) RegisterWorker(ctx context.Context, workerInfo *domain.WorkerInfo) error {
	s.logger.Info("Registering worker", "workerId", workerInfo.ID, "hostname", workerInfo.Hostname)

	workerInfo.LastHeartbeat = time.Now()

	if err := s.workerRepo.SaveWorker(ctx, workerInfo); err != nil {
		s.logger.Error("Failed to save worker", "error", err)
		return fmt.Errorf("failed to register worker: %w", err)
	}
	return nil
}

// Heartbeat refreshes the worker's state and last heartbeat time
func (s *WorkerRegistrationService) Heartbeat(ctx context.Context, workerID string, state domain.SessionState) error {
	s.logger.Debug("Recording worker heartbeat", "workerId", workerID, "state", state.String())

	worker, err := s.workerRepo.GetWorker(ctx, workerID)
	if err != nil {
		s.logger.Error("Failed to get worker for heartbeat", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to get worker: %w", err)
	}
	if worker == nil {
		return fmt.Errorf("worker not found: %s", workerID)
	}

	worker.LastHeartbeat = time.Now()
	worker.State = state.String()

	if err := s.workerRepo.SaveWorker(ctx, worker); err != nil {
		s.logger.Error("Failed to update worker heartbeat", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to update worker heartbeat: %w", err)
	}
	return nil
}

// GetWorker gets one worker, nil when unknown
func (s *WorkerRegistrationService) GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error) {
	worker, err := s.workerRepo.GetWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return worker, nil
}

// GetAllWorkers gets all registered workers
func (s *WorkerRegistrationService) GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error) {
	s.logger.Debug("Getting all workers")

	workers, err := s.workerRepo.GetAllWorkers(ctx)
	if err != nil {
		s.logger.Error("Failed to get all workers", "error", err)
		return nil, fmt.Errorf("failed to get all workers: %w", err)
	}
	return workers, nil
}

// DeregisterWorker removes a worker that shut down
func (s *WorkerRegistrationService) DeregisterWorker(ctx context.Context, workerID string) error {
	s.logger.Info("Deregistering worker", "workerId", workerID)

	if err := s.workerRepo.RemoveWorker(ctx, workerID); err != nil {
		s.logger.Error("Failed to remove worker", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to deregister worker: %w", err)
	}
	return nil
}
