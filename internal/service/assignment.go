package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// AssignmentEngine places heroes into slots while keeping every hero in at most one slot.
type AssignmentEngine struct {
	store   *SquadStore
	catalog HeroCatalog
	logger  *zap.Logger
	pending *models.PendingMove
	newID   func() uuid.UUID
}

func NewAssignmentEngine(store *SquadStore, catalog HeroCatalog, logger *zap.Logger) *AssignmentEngine {
	return &AssignmentEngine{
		store:   store,
		catalog: catalog,
		logger:  logger,
		newID:   uuid.New,
	}
}

// AssignHero puts heroID into (squadIdx, slotIdx). Moving a hero that already
// sits in another slot needs confirmation unless the user opted out.
func (e *AssignmentEngine) AssignHero(ctx context.Context, heroID string, squadIdx, slotIdx int) (models.AssignResult, error) {
	if err := validSquad(squadIdx); err != nil {
		return models.AssignResult{}, err
	}
	if err := validSlot(slotIdx); err != nil {
		return models.AssignResult{}, err
	}

	hero, ok := e.catalog.Lookup(heroID)
	if !ok {
		e.logger.Debug("Ignoring assignment of unknown hero", zap.String("hero_id", heroID))
		return models.AssignResult{Status: models.AssignStatusIgnored}, nil
	}

	target := models.SlotRef{Squad: squadIdx, Slot: slotIdx}
	current, found := e.store.state.FindHero(hero.ID)
	if found && current == target {
		return models.AssignResult{Status: models.AssignStatusUnchanged}, nil
	}

	if found && !e.store.SkipMoveConfirmation() {
		move := &models.PendingMove{
			ID:      e.newID(),
			HeroID:  hero.ID,
			From:    current,
			To:      target,
			Message: e.moveMessage(hero, current.Squad),
		}
		e.pending = move
		return models.AssignResult{Status: models.AssignStatusConfirmationRequired, Pending: move}, nil
	}

	e.perform(ctx, hero, target)
	return models.AssignResult{Status: models.AssignStatusAssigned}, nil
}

// ConfirmMove carries out the pending move with the given id. With dontAskAgain
// set, later moves skip the prompt.
func (e *AssignmentEngine) ConfirmMove(ctx context.Context, id uuid.UUID, dontAskAgain bool) (models.AssignResult, error) {
	move := e.pending
	if move == nil || move.ID != id {
		return models.AssignResult{}, fmt.Errorf("%w: %s", ErrMoveNotFound, id)
	}
	e.pending = nil

	if dontAskAgain {
		e.store.SetSkipMoveConfirmation(ctx, true)
	}

	hero, ok := e.catalog.Lookup(move.HeroID)
	if !ok {
		return models.AssignResult{Status: models.AssignStatusIgnored}, nil
	}
	if current, found := e.store.state.FindHero(hero.ID); found && current == move.To {
		return models.AssignResult{Status: models.AssignStatusUnchanged}, nil
	}

	e.perform(ctx, hero, move.To)
	e.logger.Info("Hero moved",
		zap.String("hero_id", hero.ID),
		zap.Int("from_squad", move.From.Squad),
		zap.Int("from_slot", move.From.Slot),
		zap.Int("to_squad", move.To.Squad),
		zap.Int("to_slot", move.To.Slot))
	return models.AssignResult{Status: models.AssignStatusAssigned}, nil
}

// CancelMove drops the pending move. State is untouched.
func (e *AssignmentEngine) CancelMove(id uuid.UUID) error {
	if e.pending == nil || e.pending.ID != id {
		return fmt.Errorf("%w: %s", ErrMoveNotFound, id)
	}
	e.pending = nil
	return nil
}

func (e *AssignmentEngine) discardPending() {
	e.pending = nil
}

// Pending returns the move awaiting confirmation, if any.
func (e *AssignmentEngine) Pending() *models.PendingMove {
	return e.pending
}

// perform writes hero into target. Levels come from the hero's current slot,
// then the archive, then defaults. A different hero already in target is archived.
func (e *AssignmentEngine) perform(ctx context.Context, hero models.HeroDefinition, target models.SlotRef) {
	var levels models.HeroLevels
	if current, found := e.store.state.FindHero(hero.ID); found {
		levels = e.store.slotAt(current).HeroLevels
		e.store.vacate(current)
	} else if archived, ok := e.store.state.HeroStats[hero.ID]; ok {
		levels = archived
	} else {
		levels = models.DefaultHeroLevels()
	}

	e.store.vacate(target)
	e.store.place(target, hero, levels)
	e.store.persist(ctx)
}

func (e *AssignmentEngine) moveMessage(hero models.HeroDefinition, squadIdx int) string {
	return fmt.Sprintf("%s is already assigned to %s.\nDo you want to move them here?",
		hero.Name, e.store.state.Squads[squadIdx].Name)
}
