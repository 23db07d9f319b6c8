package jobs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/job"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

// JobHandler handles job API requests
type JobHandler struct {
	jobService job.IJobService
	logger     primary.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService job.IJobService, logger primary.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// RegisterRoutes registers the API routes for JobHandler
func (h *JobHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/jobs", h.CreateJob).Methods("POST")
	router.HandleFunc("/api/info", h.GetInfo).Methods("GET")
}

// CreateJob pushes a job built from the request
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	jobID, err := h.jobService.Enqueue(r.Context(), req.Type, req.Queue, req.Args...)
	if err != nil {
		h.logger.Error("Failed to create job", "error", err)
		handlers.ResponseError(w, err.Error(), statusFor(err))
		return
	}

	handlers.ResponseWithJson(w, http.StatusAccepted, CreateJobResponse{JobID: jobID})
}

// GetInfo relays the server status document
func (h *JobHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.jobService.Info(r.Context())
	if err != nil {
		h.logger.Error("Failed to get server info", "error", err)
		handlers.ResponseError(w, "Failed to get server info", statusFor(err))
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, info)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConnection), errors.Is(err, errs.ErrTerminated):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
