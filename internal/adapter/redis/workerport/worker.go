package workerport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

var _ secondary.WorkerRepository = (*WorkerRepository)(nil)

const (
	workerKeyPrefix  = "faktory:worker:"
	labelKeyPrefix   = "faktory:label:"
	workerExpiration = 5 * time.Minute
)

// WorkerRepository implements the WorkerRepository interface with Redis.
// Records expire unless refreshed by a heartbeat.
type WorkerRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewRedisClient builds a client from configuration
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewWorkerRepository creates a new Redis worker repository
func NewWorkerRepository(redisClient *redis.Client, logger primary.Logger) *WorkerRepository {
	return &WorkerRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

func workerKey(workerID string) string {
	return workerKeyPrefix + workerID
}

func labelKey(label string) string {
	return labelKeyPrefix + label
}

// SaveWorker saves worker information to Redis and indexes it by label
func (r *WorkerRepository) SaveWorker(ctx context.Context, worker *domain.WorkerInfo) error {
	workerJSON, err := json.Marshal(worker)
	if err != nil {
		r.logger.Error("Failed to marshal worker info", "error", err)
		return fmt.Errorf("failed to marshal worker info: %w", err)
	}

	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, workerKey(worker.ID), workerJSON, workerExpiration)
	for _, label := range worker.Labels {
		pipe.SAdd(ctx, labelKey(label), worker.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save worker info", "workerId", worker.ID, "error", err)
		return fmt.Errorf("failed to save worker info: %w", err)
	}
	return nil
}

// GetWorker retrieves worker information from Redis by ID
func (r *WorkerRepository) GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error) {
	workerJSON, err := r.redisClient.Get(ctx, workerKey(workerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get worker info", "error", err)
		return nil, fmt.Errorf("failed to get worker info: %w", err)
	}

	var worker domain.WorkerInfo
	if err := json.Unmarshal(workerJSON, &worker); err != nil {
		r.logger.Error("Failed to unmarshal worker info", "error", err)
		return nil, fmt.Errorf("failed to unmarshal worker info: %w", err)
	}
	return &worker, nil
}

// GetAllWorkers retrieves every live worker record
func (r *WorkerRepository) GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := r.redisClient.Scan(ctx, cursor, workerKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	workers := make([]*domain.WorkerInfo, 0, len(keys))
	if len(keys) == 0 {
		return workers, nil
	}

	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve worker data: %w", err)
	}
	for _, value := range values {
		// expired between SCAN and MGET
		data, ok := value.(string)
		if !ok {
			continue
		}
		var worker domain.WorkerInfo
		if err := json.Unmarshal([]byte(data), &worker); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker data: %w", err)
		}
		workers = append(workers, &worker)
	}
	return workers, nil
}

// GetWorkersByLabel retrieves live workers advertising label, pruning expired
// members from the index as it goes.
func (r *WorkerRepository) GetWorkersByLabel(ctx context.Context, label string) ([]*domain.WorkerInfo, error) {
	workerIDs, err := r.redisClient.SMembers(ctx, labelKey(label)).Result()
	if err != nil {
		r.logger.Error("Failed to get worker IDs", "label", label, "error", err)
		return nil, fmt.Errorf("failed to get worker IDs: %w", err)
	}

	workers := make([]*domain.WorkerInfo, 0, len(workerIDs))
	for _, workerID := range workerIDs {
		worker, err := r.GetWorker(ctx, workerID)
		if err != nil {
			r.logger.Error("Failed to get worker", "workerId", workerID, "error", err)
			continue
		}
		if worker == nil {
			if err := r.redisClient.SRem(ctx, labelKey(label), workerID).Err(); err != nil {
				r.logger.Error("Failed to remove worker from label index", "workerId", workerID, "error", err)
			}
			continue
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

// RemoveWorker deletes the record and its label index entries
func (r *WorkerRepository) RemoveWorker(ctx context.Context, workerID string) error {
	worker, err := r.GetWorker(ctx, workerID)
	if err != nil {
		return err
	}

	pipe := r.redisClient.TxPipeline()
	pipe.Del(ctx, workerKey(workerID))
	if worker != nil {
		for _, label := range worker.Labels {
			pipe.SRem(ctx, labelKey(label), workerID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to remove worker", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to remove worker: %w", err)
	}
	return nil
}
