package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/job"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/worker"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers/jobs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers/outcomes"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers/workers"
)

// ServiceProvider carries the optional services behind the routes
type ServiceProvider struct {
	workerService worker.IWorkerRegistrationService
	jobService    job.IJobService
	runner        workers.StatusProvider
	outcomes      secondary.JobOutcomeRepository
}

func NewServiceProvider(
	workerService worker.IWorkerRegistrationService,
	jobService job.IJobService,
	runner workers.StatusProvider,
) *ServiceProvider {
	return &ServiceProvider{
		workerService: workerService,
		jobService:    jobService,
		runner:        runner,
	}
}

// WithOutcomes exposes the job outcome journal under /api/outcomes
func (p *ServiceProvider) WithOutcomes(repo secondary.JobOutcomeRepository) *ServiceProvider {
	p.outcomes = repo
	return p
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	workers.NewHandler(s.ServiceProvider.workerService, s.ServiceProvider.runner).Register(r)
	if s.ServiceProvider.jobService != nil {
		jobs.NewJobHandler(s.ServiceProvider.jobService, s.logger).RegisterRoutes(r)
	}
	if s.ServiceProvider.outcomes != nil {
		outcomes.NewOutcomeHandler(s.ServiceProvider.outcomes, s.logger).RegisterRoutes(r)
	}
	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in the background
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("http server not initialised")
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	go func() {
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down http server...")
	return s.srv.Shutdown(ctx)
}
