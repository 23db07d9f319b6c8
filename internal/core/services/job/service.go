package job

import (
	"context"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

// IJobService submits work to the server
type IJobService interface {
	// Enqueue builds a job and pushes it, returning its jid
	Enqueue(ctx context.Context, jobType string, queue string, args ...interface{}) (string, error)

	// Push submits a prepared job
	Push(ctx context.Context, job *domain.Job) error

	// Info returns the server status document
	Info(ctx context.Context) (map[string]interface{}, error)
}
