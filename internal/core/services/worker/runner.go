package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

const (
	// UnknownJobType is the errtype reported for jobs without a registered handler
	UnknownJobType = "UnknownJobType"
	// PanicErrType is the errtype reported when a handler panics
	PanicErrType = "panic"

	DefaultHeartbeatInterval = 15 * time.Second
	DefaultIdleDelay         = time.Second

	maxBacktrace = 30
)

// Handler executes one job. A returned error or a panic fails the job.
type Handler func(ctx context.Context, job *domain.Job) error

type RunnerConfig struct {
	Queues            []string
	Concurrency       int
	HeartbeatInterval time.Duration
	IdleDelay         time.Duration
	Labels            []string
}

// Status is a point-in-time view of a runner
type Status struct {
	WorkerID      string    `json:"wid"`
	Hostname      string    `json:"hostname"`
	Pid           int       `json:"pid"`
	Labels        []string  `json:"labels"`
	Queues        []string  `json:"queues"`
	State         string    `json:"state"`
	Running       bool      `json:"running"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Processed     int64     `json:"processed"`
	Failed        int64     `json:"failed"`
}

// Runner fetches jobs over Concurrency sessions and heartbeats over one more,
// all advertising the same worker identity.
type Runner struct {
	cfg      RunnerConfig
	factory  primary.SessionFactory
	logger   primary.Logger
	registry IWorkerRegistrationService
	outcomes secondary.JobOutcomeRepository
	identity domain.ConnectionOptions

	fallback Handler

	mu       sync.RWMutex
	handlers map[string]Handler
	status   Status

	quiet     atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRegistry records the worker and its heartbeats
func WithRegistry(registry IWorkerRegistrationService) RunnerOption {
	return func(r *Runner) {
		r.registry = registry
	}
}

// WithOutcomes journals every acknowledged or failed job
func WithOutcomes(outcomes secondary.JobOutcomeRepository) RunnerOption {
	return func(r *Runner) {
		r.outcomes = outcomes
	}
}

// WithFallbackHandler handles job types without a registered handler
func WithFallbackHandler(handler Handler) RunnerOption {
	return func(r *Runner) {
		r.fallback = handler
	}
}

// WithIdentity fixes the advertised identity; unset fields are resolved on Run
func WithIdentity(opts domain.ConnectionOptions) RunnerOption {
	return func(r *Runner) {
		r.identity = opts
	}
}

// NewRunner creates a runner. Zero config values take defaults.
func NewRunner(cfg RunnerConfig, factory primary.SessionFactory, logger primary.Logger, options ...RunnerOption) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = []string{domain.DefaultQueue}
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = DefaultIdleDelay
	}

	identity := domain.DefaultConnectionOptions()
	if len(cfg.Labels) > 0 {
		identity.Labels = cfg.Labels
	}

	r := &Runner{
		cfg:      cfg,
		factory:  factory,
		logger:   logger,
		identity: identity,
		handlers: make(map[string]Handler),
	}
	for _, option := range options {
		option(r)
	}
	r.status = Status{Queues: cfg.Queues, State: domain.StateConnected.String()}
	return r
}

// Register binds a handler to a job type, replacing any earlier one
func (r *Runner) Register(jobType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

func (r *Runner) handler(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	if !ok && r.fallback != nil {
		return r.fallback, true
	}
	return h, ok
}

// Status returns a snapshot of the runner
func (r *Runner) Status() Status {
	r.mu.RLock()
	status := r.status
	r.mu.RUnlock()
	status.Processed = r.processed.Load()
	status.Failed = r.failed.Load()
	return status
}

func (r *Runner) updateStatus(fn func(*Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.status)
}

// Run works until ctx is cancelled or the server terminates the worker.
// Termination by the server is not an error.
func (r *Runner) Run(ctx context.Context) error {
	opts := r.identity
	opts.Resolve()
	r.quiet.Store(false)
	r.updateStatus(func(s *Status) {
		s.WorkerID = opts.WorkerID
		s.Hostname = opts.Hostname
		s.Pid = opts.Pid
		s.Labels = opts.Labels
		s.State = domain.StateConnected.String()
		s.Running = true
	})
	defer r.updateStatus(func(s *Status) { s.Running = false })

	heartbeat, err := r.factory(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open heartbeat session: %w", err)
	}
	defer func() { _ = heartbeat.Close() }()

	r.register(ctx, opts)
	defer r.deregister(opts.WorkerID)

	if r.beat(ctx, &heartbeat, opts) == domain.HeartbeatTerminate {
		r.logger.Info("Worker terminated before start", "workerId", opts.WorkerID)
		return nil
	}

	sessions := make([]primary.WorkSession, 0, r.cfg.Concurrency)
	for i := 0; i < r.cfg.Concurrency; i++ {
		sess, err := r.factory(ctx, opts)
		if err != nil {
			for _, opened := range sessions {
				_ = opened.Close()
			}
			return fmt.Errorf("failed to open fetch session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	workCtx, cancelWork := context.WithCancel(ctx)
	defer cancelWork()

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess primary.WorkSession) {
			defer wg.Done()
			r.fetchLoop(workCtx, sess, opts)
		}(sess)
	}
	r.logger.Info("Worker started", "workerId", opts.WorkerID, "queues", r.cfg.Queues, "concurrency", r.cfg.Concurrency)

	ticker := time.NewTicker(r.cfg.HeartbeatInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if r.beat(ctx, &heartbeat, opts) == domain.HeartbeatTerminate {
				break loop
			}
		}
	}

	cancelWork()
	wg.Wait()
	r.logger.Info("Worker stopped", "workerId", opts.WorkerID, "state", r.Status().State)
	return nil
}

func (r *Runner) beat(ctx context.Context, heartbeat *primary.WorkSession, opts domain.ConnectionOptions) domain.HeartbeatStatus {
	status, err := (*heartbeat).Heartbeat()
	switch {
	case errors.Is(err, errs.ErrTerminated):
		status = domain.HeartbeatTerminate
	case errors.Is(err, errs.ErrConnection):
		r.logger.Warn("Heartbeat connection lost", "workerId", opts.WorkerID, "error", err)
		if sess, err := r.reopen(ctx, *heartbeat, opts); err == nil {
			*heartbeat = sess
		}
		return domain.HeartbeatOK
	case err != nil:
		r.logger.Error("Heartbeat failed", "workerId", opts.WorkerID, "error", err)
		return domain.HeartbeatOK
	}

	state := domain.StateConnected
	switch status {
	case domain.HeartbeatQuiet:
		state = domain.StateQuiet
		if !r.quiet.Swap(true) {
			r.logger.Info("Worker quieted, no longer fetching", "workerId", opts.WorkerID)
		}
	case domain.HeartbeatTerminate:
		state = domain.StateTerminated
		r.logger.Info("Worker terminated by server", "workerId", opts.WorkerID)
	}

	r.updateStatus(func(s *Status) {
		s.State = state.String()
		s.LastHeartbeat = time.Now()
	})
	if r.registry != nil {
		if err := r.registry.Heartbeat(ctx, opts.WorkerID, state); err != nil {
			r.logger.Warn("Failed to record heartbeat", "workerId", opts.WorkerID, "error", err)
		}
	}
	return status
}

func (r *Runner) fetchLoop(ctx context.Context, sess primary.WorkSession, opts domain.ConnectionOptions) {
	defer func() { _ = sess.Close() }()

	for ctx.Err() == nil {
		if r.quiet.Load() {
			r.idle(ctx)
			continue
		}

		job, err := sess.Fetch(r.cfg.Queues...)
		switch {
		case errors.Is(err, errs.ErrTerminated):
			return
		case errors.Is(err, errs.ErrQuiet):
			r.quiet.Store(true)
		case errors.Is(err, errs.ErrConnection):
			r.logger.Warn("Fetch connection lost", "workerId", opts.WorkerID, "error", err)
			if reopened, err := r.reopen(ctx, sess, opts); err == nil {
				sess = reopened
			}
			r.idle(ctx)
		case err != nil:
			r.logger.Error("Failed to fetch job", "workerId", opts.WorkerID, "error", err)
			r.idle(ctx)
		case job == nil:
			r.idle(ctx)
		default:
			r.process(ctx, sess, job, opts.WorkerID)
		}
	}
}

func (r *Runner) process(ctx context.Context, sess primary.WorkSession, job *domain.Job, workerID string) {
	r.logger.Debug("Processing job", "jobId", job.ID, "type", job.Type, "queue", job.Queue)

	handler, ok := r.handler(job.Type)
	if !ok {
		r.logger.Warn("No handler registered", "jobId", job.ID, "type", job.Type)
		r.failed.Add(1)
		msg := fmt.Sprintf("no handler registered for job type %q", job.Type)
		if err := sess.Fail(job.ID, UnknownJobType, msg, nil); err != nil {
			r.logger.Error("Failed to report job failure", "jobId", job.ID, "error", err)
			return
		}
		r.record(ctx, job, workerID, domain.OutcomeFailed, UnknownJobType, msg)
		return
	}

	err := execute(ctx, handler, job)
	if ctx.Err() != nil {
		// the reservation expires server side and the job is retried
		r.logger.Warn("Abandoning job", "jobId", job.ID, "type", job.Type)
		return
	}

	if err != nil {
		r.failed.Add(1)
		errType, backtrace := describeFailure(err)
		r.logger.Error("Job failed", "jobId", job.ID, "type", job.Type, "error", err)
		if ferr := sess.Fail(job.ID, errType, err.Error(), backtrace); ferr != nil {
			r.logger.Error("Failed to report job failure", "jobId", job.ID, "error", ferr)
			return
		}
		r.record(ctx, job, workerID, domain.OutcomeFailed, errType, err.Error())
		return
	}

	r.processed.Add(1)
	if err := sess.Ack(job.ID); err != nil {
		r.logger.Error("Failed to acknowledge job", "jobId", job.ID, "error", err)
		return
	}
	r.record(ctx, job, workerID, domain.OutcomeAcked, "", "")
}

func (r *Runner) record(ctx context.Context, job *domain.Job, workerID string, status domain.OutcomeStatus, errType, message string) {
	if r.outcomes == nil {
		return
	}
	outcome := &domain.JobOutcome{
		JobID:      job.ID,
		JobType:    job.Type,
		Queue:      job.Queue,
		WorkerID:   workerID,
		Status:     status,
		ErrType:    errType,
		Message:    message,
		FinishedAt: time.Now().UTC(),
	}
	if err := r.outcomes.SaveOutcome(ctx, outcome); err != nil {
		r.logger.Warn("Failed to record job outcome", "jobId", job.ID, "error", err)
	}
}

func (r *Runner) reopen(ctx context.Context, sess primary.WorkSession, opts domain.ConnectionOptions) (primary.WorkSession, error) {
	_ = sess.Close()
	reopened, err := r.factory(ctx, opts)
	if err != nil {
		r.logger.Error("Failed to reconnect", "workerId", opts.WorkerID, "error", err)
		return nil, err
	}
	return reopened, nil
}

func (r *Runner) idle(ctx context.Context) {
	timer := time.NewTimer(r.cfg.IdleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (r *Runner) register(ctx context.Context, opts domain.ConnectionOptions) {
	if r.registry == nil {
		return
	}
	if err := r.registry.RegisterWorker(ctx, domain.NewWorkerInfo(opts, r.cfg.Queues)); err != nil {
		r.logger.Warn("Failed to register worker", "workerId", opts.WorkerID, "error", err)
	}
}

func (r *Runner) deregister(workerID string) {
	if r.registry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.registry.DeregisterWorker(ctx, workerID); err != nil {
		r.logger.Warn("Failed to deregister worker", "workerId", workerID, "error", err)
	}
}

// PanicError is a recovered handler panic
type PanicError struct {
	Value interface{}
	Stack []string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func execute(ctx context.Context, handler Handler, job *domain.Job) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: stackLines(debug.Stack())}
		}
	}()
	return handler(ctx, job)
}

func describeFailure(err error) (string, []string) {
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return PanicErrType, panicErr.Stack
	}
	return fmt.Sprintf("%T", err), nil
}

func stackLines(stack []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(stack), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
		if len(lines) == maxBacktrace {
			break
		}
	}
	return lines
}
