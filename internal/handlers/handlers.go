package handlers

import (
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/handlers/public"
)

// Handlers holds every HTTP handler of the service
type Handlers struct {
	Health  *HealthHandler
	Planner *public.PlannerHandler
}

// HandlerDependencies holds what the handlers are built from
type HandlerDependencies struct {
	Planner     public.PlannerService
	Storage     StorageChecker
	CatalogSize func() int
	Version     string
	Logger      *zap.Logger
}

func NewHandlers(deps *HandlerDependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Storage, deps.CatalogSize, deps.Version),
		Planner: public.NewPlannerHandler(deps.Planner, deps.Logger),
	}
}
