package job

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

var _ IJobService = (*JobService)(nil)

// JobService shares one session between callers, serializing every round trip.
// A session that lost its stream is redialed before the next round trip when
// it implements primary.Redialer. The failed call itself is not retried, so a
// push is sent at most once.
type JobService struct {
	mu      sync.Mutex
	session primary.WorkSession
	logger  primary.Logger
}

// NewJobService creates a new job service
func NewJobService(session primary.WorkSession, logger primary.Logger) *JobService {
	return &JobService{
		session: session,
		logger:  logger,
	}
}

// Enqueue builds a job for queue (the default queue when empty) and pushes it
func (s *JobService) Enqueue(ctx context.Context, jobType string, queue string, args ...interface{}) (string, error) {
	if jobType == "" {
		return "", fmt.Errorf("%w: job type is required", errs.ErrInvalidInput)
	}

	job := domain.NewJob(jobType, args...)
	if queue != "" {
		job.Queue = queue
	}
	if err := s.Push(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Push submits a prepared job
func (s *JobService) Push(ctx context.Context, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(ctx); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}
	if err := s.session.Push(job); err != nil {
		s.logger.Error("Failed to push job", "error", err)
		return fmt.Errorf("failed to push job: %w", err)
	}

	s.logger.Info("Job enqueued", "jobId", job.ID, "type", job.Type, "queue", job.Queue)
	return nil
}

// Info returns the server status document
func (s *JobService) Info(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(ctx); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	info, err := s.session.Info()
	if err != nil {
		s.logger.Error("Failed to get server info", "error", err)
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return info, nil
}

// ensureConnected redials a dropped session. Callers hold mu.
func (s *JobService) ensureConnected(ctx context.Context) error {
	redialer, ok := s.session.(primary.Redialer)
	if !ok || redialer.Connected() {
		return nil
	}
	s.logger.Warn("Producer session lost, redialing")
	if err := redialer.Redial(ctx); err != nil {
		s.logger.Error("Failed to redial producer session", "error", err)
		return err
	}
	return nil
}
