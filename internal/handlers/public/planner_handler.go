package public

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/models"
	"github.com/shard-legends/squad-planner-service/internal/service"
	"github.com/shard-legends/squad-planner-service/internal/storage"
)

const (
	maxImportBytes = 1 << 20
	exportFilename = "squad-planner-export.json"
)

// PlannerService is the planner surface used by the HTTP layer
type PlannerService interface {
	State(ctx context.Context) *models.StateResponse
	GetGlobalStat(ctx context.Context, key string) (*models.GlobalStatResponse, error)
	SetGlobalStatLevel(ctx context.Context, key string, raw models.RawValue) (*models.GlobalStatResponse, error)
	SwitchSquad(ctx context.Context, idx int) error
	ClearSquad(ctx context.Context) error
	AssignHero(ctx context.Context, heroID string, squadIdx, slotIdx int) (*models.AssignResult, error)
	ConfirmMove(ctx context.Context, id uuid.UUID, dontAskAgain bool) (*models.AssignResult, error)
	CancelMove(ctx context.Context, id uuid.UUID) error
	UpdateSlot(ctx context.Context, slotIdx int, update models.SlotUpdate) (*models.SlotData, error)
	UpdateSkillLevel(ctx context.Context, slotIdx int, skill string, raw models.RawValue) (*models.SlotData, error)
	RemoveHero(ctx context.Context, slotIdx int) error
	SquadDR(ctx context.Context) *models.SquadDRResponse
	Meta(ctx context.Context) models.MetaStatus
	ListHeroes(ctx context.Context, category, search string) *models.HeroListResponse
	Export(ctx context.Context) *models.AppState
	Import(ctx context.Context, state *models.AppState) error
	Reset(ctx context.Context) error
}

// PlannerHandler serves the /api/v1 planner endpoints
type PlannerHandler struct {
	planner PlannerService
	logger  *zap.Logger
}

func NewPlannerHandler(planner PlannerService, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{
		planner: planner,
		logger:  logger,
	}
}

// Routes mounts every planner endpoint on r.
func (h *PlannerHandler) Routes(r chi.Router) {
	r.Get("/state", h.GetState)

	r.Get("/stats/{key}", h.GetGlobalStat)
	r.Put("/stats/{key}", h.SetGlobalStat)

	r.Put("/squads/current", h.SwitchSquad)
	r.Post("/squads/current/clear", h.ClearSquad)
	r.Get("/squads/current/dr", h.GetSquadDR)
	r.Get("/squads/current/meta", h.GetMeta)
	r.Post("/squads/{squad}/slots/{slot}/hero", h.AssignHero)

	r.Post("/moves/{id}/confirm", h.ConfirmMove)
	r.Post("/moves/{id}/cancel", h.CancelMove)

	r.Patch("/slots/{slot}", h.UpdateSlot)
	r.Put("/slots/{slot}/skills/{skill}", h.UpdateSkill)
	r.Delete("/slots/{slot}/hero", h.RemoveHero)

	r.Get("/heroes", h.ListHeroes)

	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/reset", h.Reset)
}

// GetState handles GET /state
func (h *PlannerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.planner.State(r.Context()))
}

// GetGlobalStat handles GET /stats/{key}
func (h *PlannerHandler) GetGlobalStat(w http.ResponseWriter, r *http.Request) {
	stat, err := h.planner.GetGlobalStat(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stat)
}

// SetGlobalStat handles PUT /stats/{key}
func (h *PlannerHandler) SetGlobalStat(w http.ResponseWriter, r *http.Request) {
	var req models.SetValueRequest
	if !h.decode(w, r, &req) {
		return
	}

	stat, err := h.planner.SetGlobalStatLevel(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stat)
}

// SwitchSquad handles PUT /squads/current
func (h *PlannerHandler) SwitchSquad(w http.ResponseWriter, r *http.Request) {
	var req models.SwitchSquadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := models.ValidateRequest(req); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
		return
	}

	if err := h.planner.SwitchSquad(r.Context(), *req.Index); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.State(r.Context()))
}

// ClearSquad handles POST /squads/current/clear
func (h *PlannerHandler) ClearSquad(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.ClearSquad(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.State(r.Context()))
}

// GetSquadDR handles GET /squads/current/dr
func (h *PlannerHandler) GetSquadDR(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.planner.SquadDR(r.Context()))
}

// GetMeta handles GET /squads/current/meta
func (h *PlannerHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.planner.Meta(r.Context()))
}

// AssignHero handles POST /squads/{squad}/slots/{slot}/hero.
// A move that needs the user's answer is reported with 409.
func (h *PlannerHandler) AssignHero(w http.ResponseWriter, r *http.Request) {
	squadIdx, ok := h.intParam(w, r, "squad")
	if !ok {
		return
	}
	slotIdx, ok := h.intParam(w, r, "slot")
	if !ok {
		return
	}

	var req models.AssignHeroRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := models.ValidateRequest(req); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
		return
	}

	result, err := h.planner.AssignHero(r.Context(), req.HeroID, squadIdx, slotIdx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == models.AssignStatusConfirmationRequired {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, result)
}

// ConfirmMove handles POST /moves/{id}/confirm
func (h *PlannerHandler) ConfirmMove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moveID(w, r)
	if !ok {
		return
	}

	var req models.ConfirmMoveRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	result, err := h.planner.ConfirmMove(r.Context(), id, req.DontAskAgain)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CancelMove handles POST /moves/{id}/cancel
func (h *PlannerHandler) CancelMove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.moveID(w, r)
	if !ok {
		return
	}

	if err := h.planner.CancelMove(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSlot handles PATCH /slots/{slot}
func (h *PlannerHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	slotIdx, ok := h.intParam(w, r, "slot")
	if !ok {
		return
	}

	var req models.UpdateSlotRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, err := h.planner.UpdateSlot(r.Context(), slotIdx, req.ToUpdate())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, slot)
}

// UpdateSkill handles PUT /slots/{slot}/skills/{skill}
func (h *PlannerHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	slotIdx, ok := h.intParam(w, r, "slot")
	if !ok {
		return
	}

	var req models.SetValueRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, err := h.planner.UpdateSkillLevel(r.Context(), slotIdx, chi.URLParam(r, "skill"), req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, slot)
}

// RemoveHero handles DELETE /slots/{slot}/hero
func (h *PlannerHandler) RemoveHero(w http.ResponseWriter, r *http.Request) {
	slotIdx, ok := h.intParam(w, r, "slot")
	if !ok {
		return
	}

	if err := h.planner.RemoveHero(r.Context(), slotIdx); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHeroes handles GET /heroes?category=&search=
func (h *PlannerHandler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.writeJSON(w, http.StatusOK, h.planner.ListHeroes(r.Context(), query.Get("category"), query.Get("search")))
}

// Export handles GET /export and returns the snapshot as a download
func (h *PlannerHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := storage.EncodeSnapshot(h.planner.Export(r.Context()))
	if err != nil {
		h.logger.Error("Failed to encode export", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Failed to export state")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /import. Browser exports in either historic layout are accepted.
func (h *PlannerHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Failed to read request body")
		return
	}

	state, err := storage.DecodeSnapshot(body, storage.Strict)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeInvalidSnapshot, err.Error())
		return
	}

	if err := h.planner.Import(r.Context(), state); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.State(r.Context()))
}

// Reset handles POST /reset
func (h *PlannerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.Reset(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.State(r.Context()))
}

func (h *PlannerHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func (h *PlannerHandler) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid "+name+" index: "+raw)
		return 0, false
	}
	return v, true
}

func (h *PlannerHandler) moveID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid move id")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps planner errors to HTTP statuses
func (h *PlannerHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSquadIndex),
		errors.Is(err, service.ErrInvalidSlotIndex):
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
	case errors.Is(err, service.ErrInvalidSnapshot):
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeInvalidSnapshot, err.Error())
	case errors.Is(err, service.ErrUnknownStat),
		errors.Is(err, service.ErrUnknownSkill),
		errors.Is(err, service.ErrMoveNotFound):
		h.writeError(w, http.StatusNotFound, models.ErrorCodeNotFound, err.Error())
	default:
		h.logger.Error("Planner operation failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
	}
}

func (h *PlannerHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *PlannerHandler) writeError(w http.ResponseWriter, statusCode int, errorCode string, message string) {
	h.writeJSON(w, statusCode, models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
