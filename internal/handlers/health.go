package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// StorageChecker is the snapshot backend as seen by the health check.
type StorageChecker interface {
	Health(ctx context.Context) error
	Backend() string
}

type HealthHandler struct {
	storage     StorageChecker
	catalogSize func() int
	version     string
}

func NewHealthHandler(storage StorageChecker, catalogSize func() int, version string) *HealthHandler {
	return &HealthHandler{
		storage:     storage,
		catalogSize: catalogSize,
		version:     version,
	}
}

// Health reports the storage backend and the roster size. An empty roster
// degrades the service but does not fail it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response := models.HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      h.version,
		Dependencies: make(map[string]string),
	}

	// Check storage
	backend := "storage_" + h.storage.Backend()
	if err := h.storage.Health(ctx); err != nil {
		response.Status = "unhealthy"
		response.Dependencies[backend] = "down: " + err.Error()
	} else {
		response.Dependencies[backend] = "ok"
	}

	heroes := h.catalogSize()
	if heroes == 0 {
		response.Dependencies["catalog"] = "empty"
		if response.Status == "ok" {
			response.Status = "degraded"
		}
	} else {
		response.Dependencies["catalog"] = strconv.Itoa(heroes) + " heroes"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Health(r.Context()); err != nil {
		http.Error(w, "Storage not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
