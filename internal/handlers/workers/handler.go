package workers

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/worker"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/handlers"
)

// StatusProvider reports the local worker, typically a *worker.Runner
type StatusProvider interface {
	Status() worker.Status
}

type ApiHandler struct {
	WorkerService worker.IWorkerRegistrationService
	Runner        StatusProvider
}

// NewHandler creates the worker handler. Either dependency may be nil, in
// which case its routes answer 404.
func NewHandler(workerService worker.IWorkerRegistrationService, runner StatusProvider) *ApiHandler {
	return &ApiHandler{
		WorkerService: workerService,
		Runner:        runner,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", api.Health).Methods("GET")
	r.HandleFunc("/api/worker", api.GetWorker).Methods("GET")
	r.HandleFunc("/api/workers", api.GetWorkers).Methods("GET")
	r.HandleFunc("/api/workers/{workerId}", api.GetWorkerByID).Methods("GET")
}

// Health answers 503 once the server has terminated the local worker
func (api *ApiHandler) Health(w http.ResponseWriter, r *http.Request) {
	state := domain.StateConnected.String()
	if api.Runner != nil {
		state = api.Runner.Status().State
	}
	if state == domain.StateTerminated.String() {
		handlers.ResponseWithJson(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "state": state})
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "ok", "state": state})
}

func (api *ApiHandler) GetWorker(w http.ResponseWriter, r *http.Request) {
	if api.Runner == nil {
		handlers.ResponseError(w, "No local worker", http.StatusNotFound)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, api.Runner.Status())
}

func (api *ApiHandler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	if api.WorkerService == nil {
		handlers.ResponseError(w, "Worker registry not configured", http.StatusNotFound)
		return
	}
	workers, err := api.WorkerService.GetAllWorkers(r.Context())
	if err != nil {
		handlers.ResponseError(w, "Failed to get workers", http.StatusInternalServerError)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, map[string][]*domain.WorkerInfo{"workers": workers})
}

func (api *ApiHandler) GetWorkerByID(w http.ResponseWriter, r *http.Request) {
	if api.WorkerService == nil {
		handlers.ResponseError(w, "Worker registry not configured", http.StatusNotFound)
		return
	}
	workerID := mux.Vars(r)["workerId"]

	info, err := api.WorkerService.GetWorker(r.Context(), workerID)
	if err != nil {
		handlers.ResponseError(w, "Failed to get worker", http.StatusInternalServerError)
		return
	}
	if info == nil {
		handlers.ResponseError(w, "Worker not found", http.StatusNotFound)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, info)
}
