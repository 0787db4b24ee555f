package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// SquadStore owns the planner state. Every mutation is followed by a full
// snapshot save. It is not safe for concurrent use; Planner serialises access.
type SquadStore struct {
	state    *models.AppState
	skipMove bool
	repo     StateRepository
	logger   *zap.Logger
}

// NewSquadStore creates a store holding factory defaults until Load is called.
func NewSquadStore(repo StateRepository, logger *zap.Logger) *SquadStore {
	return &SquadStore{
		state:  models.NewAppState(),
		repo:   repo,
		logger: logger,
	}
}

// Load restores the persisted snapshot. Any failure leaves factory defaults in place.
func (s *SquadStore) Load(ctx context.Context) {
	state, err := s.repo.LoadState(ctx)
	switch {
	case err != nil:
		s.logger.Warn("Failed to load snapshot, using defaults", zap.Error(err))
		s.state = models.NewAppState()
	case state == nil:
		s.logger.Info("No snapshot stored, starting with defaults")
		s.state = models.NewAppState()
	default:
		s.state = state
	}

	skip, err := s.repo.LoadSkipMoveConfirmation(ctx)
	if err != nil {
		s.logger.Warn("Failed to load move confirmation preference", zap.Error(err))
		skip = false
	}
	s.skipMove = skip
}

// Snapshot returns a deep copy of the current state.
func (s *SquadStore) Snapshot() *models.AppState {
	return s.state.Clone()
}

// SkipMoveConfirmation reports whether the user opted out of move prompts.
func (s *SquadStore) SkipMoveConfirmation() bool {
	return s.skipMove
}

func (s *SquadStore) GetGlobalStat(key string) (models.GlobalStat, error) {
	if _, ok := models.LookupGlobalStat(key); !ok {
		return models.GlobalStat{}, fmt.Errorf("%w: %s", ErrUnknownStat, key)
	}
	stat, ok := s.state.GlobalBaseStats[key]
	if !ok {
		stat = models.DeriveGlobalStat(key, 0)
	}
	return stat, nil
}

// SetGlobalStatLevel parses raw with a fallback of 0 and recomputes the derived reductions.
func (s *SquadStore) SetGlobalStatLevel(ctx context.Context, key string, raw models.RawValue) (models.GlobalStat, error) {
	if _, ok := models.LookupGlobalStat(key); !ok {
		return models.GlobalStat{}, fmt.Errorf("%w: %s", ErrUnknownStat, key)
	}
	stat := models.DeriveGlobalStat(key, raw.Int(0))
	s.state.GlobalBaseStats[key] = stat
	s.persist(ctx)
	return stat, nil
}

func (s *SquadStore) SwitchSquad(ctx context.Context, idx int) error {
	if err := validSquad(idx); err != nil {
		return err
	}
	s.state.CurrentSquadIdx = idx
	s.persist(ctx)
	return nil
}

// UpdateSlot merges a partial update into a slot of the current squad.
// The weapon level is clamped to 1..30 and skills are re-capped whenever it changes.
func (s *SquadStore) UpdateSlot(ctx context.Context, slotIdx int, update models.SlotUpdate) (models.SlotData, error) {
	if err := validSlot(slotIdx); err != nil {
		return models.SlotData{}, err
	}
	slot := &s.state.CurrentSquad().Slots[slotIdx]

	if update.ExWeaponLevel != nil {
		slot.ExWeaponLevel = clamp(*update.ExWeaponLevel, models.MinExWeaponLevel, models.MaxExWeaponLevel)
		limit := models.SkillCap(slot.ExWeaponLevel)
		slot.Skills.Tactics = min(slot.Skills.Tactics, limit)
		slot.Skills.Passive = min(slot.Skills.Passive, limit)
	}
	if update.Stars != nil {
		slot.Stars = max(*update.Stars, 0)
	}

	s.persist(ctx)
	return *slot, nil
}

// UpdateSkillLevel parses raw with a fallback of 1, floors at 1 and caps at the slot's skill cap.
func (s *SquadStore) UpdateSkillLevel(ctx context.Context, slotIdx int, skill models.SkillName, raw models.RawValue) (models.SlotData, error) {
	if err := validSlot(slotIdx); err != nil {
		return models.SlotData{}, err
	}
	if skill != models.SkillTactics && skill != models.SkillPassive {
		return models.SlotData{}, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
	}
	slot := &s.state.CurrentSquad().Slots[slotIdx]

	level := clamp(raw.Int(models.MinSkillLevel), models.MinSkillLevel, models.SkillCap(slot.ExWeaponLevel))
	slot.Skills.Set(skill, level)

	s.persist(ctx)
	return *slot, nil
}

// RemoveHero archives the occupant's levels and empties the slot. Removing from an empty slot is a no-op.
func (s *SquadStore) RemoveHero(ctx context.Context, slotIdx int) error {
	if err := validSlot(slotIdx); err != nil {
		return err
	}
	if s.vacate(models.SlotRef{Squad: s.state.CurrentSquadIdx, Slot: slotIdx}) {
		s.persist(ctx)
	}
	return nil
}

// ClearSquad empties every slot of the current squad, archiving each hero.
func (s *SquadStore) ClearSquad(ctx context.Context) {
	for i := range s.state.CurrentSquad().Slots {
		s.vacate(models.SlotRef{Squad: s.state.CurrentSquadIdx, Slot: i})
	}
	s.persist(ctx)
}

// Replace swaps in an already validated state wholesale.
func (s *SquadStore) Replace(ctx context.Context, state *models.AppState) {
	s.state = state.Clone()
	s.persist(ctx)
}

// Reset drops the persisted snapshot and preference and returns to factory defaults.
func (s *SquadStore) Reset(ctx context.Context) error {
	s.state = models.NewAppState()
	s.skipMove = false
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear persisted state", zap.Error(err))
		return fmt.Errorf("failed to clear persisted state: %w", err)
	}
	s.logger.Info("Planner state reset to defaults")
	return nil
}

// SetSkipMoveConfirmation stores the "don't ask again" choice.
func (s *SquadStore) SetSkipMoveConfirmation(ctx context.Context, skip bool) {
	s.skipMove = skip
	if err := s.repo.SaveSkipMoveConfirmation(ctx, skip); err != nil {
		s.logger.Error("Failed to persist move confirmation preference", zap.Error(err))
	}
}

// vacate archives and empties the slot at ref. It reports whether a hero was removed.
func (s *SquadStore) vacate(ref models.SlotRef) bool {
	slot := &s.state.Squads[ref.Squad].Slots[ref.Slot]
	if slot.IsEmpty() {
		return false
	}
	s.state.HeroStats[slot.HeroID] = slot.HeroLevels
	*slot = models.EmptySlot()
	return true
}

// place writes hero into ref with the given levels.
func (s *SquadStore) place(ref models.SlotRef, hero models.HeroDefinition, levels models.HeroLevels) {
	s.state.Squads[ref.Squad].Slots[ref.Slot] = models.SlotData{
		HeroID:     hero.ID,
		Name:       hero.Name,
		Category:   hero.Category,
		HeroLevels: levels,
	}
}

func (s *SquadStore) slotAt(ref models.SlotRef) models.SlotData {
	return s.state.Squads[ref.Squad].Slots[ref.Slot]
}

func (s *SquadStore) persist(ctx context.Context) {
	if err := s.repo.SaveState(ctx, s.state); err != nil {
		s.logger.Error("Failed to persist snapshot", zap.Error(err))
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
