package worker

import (
	"context"
	"sync"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

var _ secondary.WorkerRepository = (*memoryRepo)(nil)

type memoryRepo struct {
	mu      sync.Mutex
	workers map[string]domain.WorkerInfo
	saves   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{workers: make(map[string]domain.WorkerInfo)}
}

func (m *memoryRepo) SaveWorker(_ context.Context, worker *domain.WorkerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[worker.ID] = *worker
	m.saves++
	return nil
}

func (m *memoryRepo) GetWorker(_ context.Context, workerID string) (*domain.WorkerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[workerID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *memoryRepo) GetAllWorkers(_ context.Context) ([]*domain.WorkerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.WorkerInfo, 0, len(m.workers))
	for _, w := range m.workers {
		w := w
		out = append(out, &w)
	}
	return out, nil
}

func (m *memoryRepo) RemoveWorker(_ context.Context, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workers, workerID)
	return nil
}

var _ secondary.JobOutcomeRepository = (*memoryOutcomes)(nil)

type memoryOutcomes struct {
	mu       sync.Mutex
	outcomes []domain.JobOutcome
}

func (m *memoryOutcomes) SaveOutcome(_ context.Context, outcome *domain.JobOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, *outcome)
	return nil
}

func (m *memoryOutcomes) ListOutcomes(_ context.Context, filter domain.OutcomeFilter) ([]*domain.JobOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.JobOutcome, 0, len(m.outcomes))
	for i := len(m.outcomes) - 1; i >= 0; i-- {
		o := m.outcomes[i]
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, &o)
	}
	return out, nil
}

func (m *memoryOutcomes) byJob() map[string]domain.JobOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.JobOutcome, len(m.outcomes))
	for _, o := range m.outcomes {
		out[o.JobID] = o
	}
	return out
}
