package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/catalog"
	"github.com/shard-legends/squad-planner-service/internal/models"
	"github.com/shard-legends/squad-planner-service/pkg/metrics"
)

// Planner is the entry point used by the HTTP layer. Each call runs to
// completion under one lock: mutate, recompute, persist, respond.
type Planner struct {
	mu         sync.Mutex
	store      *SquadStore
	assigner   *AssignmentEngine
	calculator *DRCalculator
	detector   *MetaDetector
	catalog    HeroCatalog
	logger     *zap.Logger
}

// Dependencies contains the collaborators needed to build a Planner
type Dependencies struct {
	Repository StateRepository
	Catalog    HeroCatalog
	Layout     Layout
	Logger     *zap.Logger
}

// NewPlanner wires the components and loads the persisted state.
func NewPlanner(ctx context.Context, deps Dependencies) *Planner {
	store := NewSquadStore(deps.Repository, deps.Logger)
	store.Load(ctx)

	return &Planner{
		store:      store,
		assigner:   NewAssignmentEngine(store, deps.Catalog, deps.Logger),
		calculator: NewDRCalculator(deps.Layout, deps.Catalog),
		detector:   NewMetaDetector(),
		catalog:    deps.Catalog,
		logger:     deps.Logger,
	}
}

// State returns the full view: state copy, current squad DR and meta status.
func (p *Planner) State(ctx context.Context) *models.StateResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.store.Snapshot()
	return &models.StateResponse{
		State:     state,
		SquadDR:   p.calculator.SquadDR(state, state.CurrentSquadIdx),
		Meta:      p.detectMeta(state.CurrentSquad()),
		SkipMoves: p.store.SkipMoveConfirmation(),
	}
}

func (p *Planner) GetGlobalStat(ctx context.Context, key string) (*models.GlobalStatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stat, err := p.store.GetGlobalStat(key)
	if err != nil {
		return nil, err
	}
	return &models.GlobalStatResponse{Key: key, GlobalStat: stat}, nil
}

func (p *Planner) SetGlobalStatLevel(ctx context.Context, key string, raw models.RawValue) (*models.GlobalStatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stat, err := p.store.SetGlobalStatLevel(ctx, key, raw)
	if err != nil {
		return nil, err
	}
	return &models.GlobalStatResponse{Key: key, GlobalStat: stat}, nil
}

func (p *Planner) SwitchSquad(ctx context.Context, idx int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.SwitchSquad(ctx, idx)
}

func (p *Planner) AssignHero(ctx context.Context, heroID string, squadIdx, slotIdx int) (*models.AssignResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.assigner.AssignHero(ctx, heroID, squadIdx, slotIdx)
	if err != nil {
		return nil, err
	}
	metrics.RecordHeroAssignment(string(result.Status))
	return &result, nil
}

func (p *Planner) ConfirmMove(ctx context.Context, id uuid.UUID, dontAskAgain bool) (*models.AssignResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result, err := p.assigner.ConfirmMove(ctx, id, dontAskAgain)
	if err != nil {
		return nil, err
	}
	metrics.RecordHeroAssignment(string(result.Status))
	return &result, nil
}

func (p *Planner) CancelMove(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.assigner.CancelMove(id); err != nil {
		return err
	}
	metrics.RecordHeroAssignment("cancelled")
	return nil
}

func (p *Planner) UpdateSlot(ctx context.Context, slotIdx int, update models.SlotUpdate) (*models.SlotData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	slot, err := p.store.UpdateSlot(ctx, slotIdx, update)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (p *Planner) UpdateSkillLevel(ctx context.Context, slotIdx int, skill string, raw models.RawValue) (*models.SlotData, error) {
	name, ok := models.ParseSkillName(skill)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	slot, err := p.store.UpdateSkillLevel(ctx, slotIdx, name, raw)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (p *Planner) RemoveHero(ctx context.Context, slotIdx int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.RemoveHero(ctx, slotIdx)
}

func (p *Planner) ClearSquad(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.ClearSquad(ctx)
	return nil
}

// SquadDR computes DR for the current squad.
func (p *Planner) SquadDR(ctx context.Context) *models.SquadDRResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.store.state
	return &models.SquadDRResponse{
		SquadIdx: state.CurrentSquadIdx,
		Slots:    p.calculator.SquadDR(state, state.CurrentSquadIdx),
	}
}

// Meta classifies the current squad.
func (p *Planner) Meta(ctx context.Context) models.MetaStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.detectMeta(p.store.state.CurrentSquad())
}

// detectMeta classifies squad for a response and counts the result.
func (p *Planner) detectMeta(squad *models.Squad) models.MetaStatus {
	status := p.detector.Detect(squad)
	metrics.RecordMetaDetection(string(status.MetaType))
	return status
}

// ListHeroes returns the roster for the picker. The unlockable hero appears
// only while the current squad unlocks it.
func (p *Planner) ListHeroes(ctx context.Context, category, search string) *models.HeroListResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	unlocked := p.detector.Detect(p.store.state.CurrentSquad()).Unlocked
	used := p.store.state.AssignedHeroIDs()

	heroes := p.catalog.List(catalog.Filter{Category: category, Search: search, Unlocked: unlocked})
	entries := make([]models.RosterEntry, 0, len(heroes))
	for _, h := range heroes {
		entries = append(entries, models.RosterEntry{HeroDefinition: h, InSquad: used[h.ID]})
	}
	return &models.HeroListResponse{Heroes: entries, Total: len(entries)}
}

// Export returns a copy of the state for download.
func (p *Planner) Export(ctx context.Context) *models.AppState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.Snapshot()
}

// Import replaces the whole state after validating it. Slot names and
// categories are refreshed from the roster where the hero is known.
func (p *Planner) Import(ctx context.Context, state *models.AppState) error {
	if err := models.ValidateAppState(state); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	imported := state.Clone()
	for sq := range imported.Squads {
		for sl := range imported.Squads[sq].Slots {
			slot := &imported.Squads[sq].Slots[sl]
			if slot.IsEmpty() {
				continue
			}
			if hero, ok := p.catalog.Lookup(slot.HeroID); ok {
				slot.Name = hero.Name
				slot.Category = hero.Category
			}
		}
	}
	for key, stat := range imported.GlobalBaseStats {
		imported.GlobalBaseStats[key] = models.DeriveGlobalStat(key, stat.Level)
	}
	for _, def := range models.GlobalStatDefinitions {
		if _, ok := imported.GlobalBaseStats[def.Key]; !ok {
			imported.GlobalBaseStats[def.Key] = models.DeriveGlobalStat(def.Key, 0)
		}
	}

	p.assigner.discardPending()
	p.store.Replace(ctx, imported)
	p.logger.Info("Planner state imported")
	return nil
}

// Reset clears persisted state and returns to defaults.
func (p *Planner) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.assigner.discardPending()
	return p.store.Reset(ctx)
}

// CatalogSize reports how many heroes the roster holds.
func (p *Planner) CatalogSize() int {
	return p.catalog.Len()
}
