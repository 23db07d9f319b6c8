package outcomes

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers"
)

const maxLimit = 1000

// OutcomeHandler serves the journal of finished jobs
type OutcomeHandler struct {
	repo   secondary.JobOutcomeRepository
	logger primary.Logger
}

func NewOutcomeHandler(repo secondary.JobOutcomeRepository, logger primary.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *OutcomeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/outcomes", h.ListOutcomes).Methods("GET")
}

// ListOutcomes accepts optional status, jobtype and limit query parameters
func (h *OutcomeHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OutcomeFilter{
		Status:  domain.OutcomeStatus(query.Get("status")),
		JobType: query.Get("jobtype"),
	}
	switch filter.Status {
	case "", domain.OutcomeAcked, domain.OutcomeFailed:
	default:
		handlers.ResponseError(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxLimit {
			handlers.ResponseError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	outcomes, err := h.repo.ListOutcomes(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list outcomes", "error", err)
		handlers.ResponseError(w, "Failed to list outcomes", http.StatusInternalServerError)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, map[string][]*domain.JobOutcome{"outcomes": outcomes})
}
