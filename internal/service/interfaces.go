package service

import (
	"context"
	"errors"

	"github.com/shard-legends/squad-planner-service/internal/catalog"
	"github.com/shard-legends/squad-planner-service/internal/models"
)

var (
	// ErrInvalidSquadIndex indicates a squad index outside 0..2
	ErrInvalidSquadIndex = errors.New("invalid squad index")

	// ErrInvalidSlotIndex indicates a slot index outside 0..4
	ErrInvalidSlotIndex = errors.New("invalid slot index")

	// ErrUnknownStat indicates a global stat key that is not defined
	ErrUnknownStat = errors.New("unknown global stat")

	// ErrUnknownSkill indicates a skill other than tactics or passive
	ErrUnknownSkill = errors.New("unknown skill")

	// ErrMoveNotFound indicates that no pending move matches the id
	ErrMoveNotFound = errors.New("pending move not found")

	// ErrInvalidSnapshot indicates an import that breaks the state invariants
	ErrInvalidSnapshot = models.ErrInvalidSnapshot
)

// HeroCatalog is the read-only hero roster.
type HeroCatalog interface {
	Lookup(id string) (models.HeroDefinition, bool)
	List(f catalog.Filter) []models.HeroDefinition
	Len() int
}

// StateRepository persists the planner snapshot and the move confirmation preference.
// LoadState returns (nil, nil) when nothing has been stored yet.
type StateRepository interface {
	LoadState(ctx context.Context) (*models.AppState, error)
	SaveState(ctx context.Context, state *models.AppState) error
	LoadSkipMoveConfirmation(ctx context.Context) (bool, error)
	SaveSkipMoveConfirmation(ctx context.Context, skip bool) error
	Clear(ctx context.Context) error
}

func validSquad(idx int) error {
	if idx < 0 || idx >= models.SquadCount {
		return ErrInvalidSquadIndex
	}
	return nil
}

func validSlot(idx int) error {
	if idx < 0 || idx >= models.SlotsPerSquad {
		return ErrInvalidSlotIndex
	}
	return nil
}
