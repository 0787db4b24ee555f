package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/catalog"
	"github.com/shard-legends/squad-planner-service/internal/models"
)

type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) LoadState(ctx context.Context) (*models.AppState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppState), args.Error(1)
}

func (m *MockStateRepository) SaveState(ctx context.Context, state *models.AppState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) LoadSkipMoveConfirmation(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockStateRepository) SaveSkipMoveConfirmation(ctx context.Context, skip bool) error {
	args := m.Called(ctx, skip)
	return args.Error(0)
}

func (m *MockStateRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// newEmptyRepo returns a repository mock with nothing stored that accepts every save.
func newEmptyRepo() *MockStateRepository {
	repo := &MockStateRepository{}
	repo.On("LoadState", mock.Anything).Return(nil, nil)
	repo.On("LoadSkipMoveConfirmation", mock.Anything).Return(false, nil)
	repo.On("SaveState", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveSkipMoveConfirmation", mock.Anything, mock.Anything).Return(nil)
	repo.On("Clear", mock.Anything).Return(nil)
	return repo
}

func skill(name string, base, inc float64, target models.SkillTarget) models.SkillDef {
	return models.SkillDef{Name: name, HasDR: true, Base: base, Increment: inc, Target: target}
}

func plain(name string) models.SkillDef {
	return models.SkillDef{Name: name}
}

func hero(id, name string, cat models.Category, tactics, passive models.SkillDef) models.HeroDefinition {
	return models.HeroDefinition{
		ID: id, Name: name, Category: cat,
		Skills: models.HeroSkills{Auto: plain("auto"), Tactics: tactics, Passive: passive},
	}
}

// testRoster covers every meta combination plus a few DR skills.
func testRoster(t *testing.T) *catalog.Catalog {
	t.Helper()
	heroes := []models.HeroDefinition{
		hero("adam", "Adam", models.CategoryTank, skill("Bulwark", 2, 0.5, models.TargetFront), skill("Steel Skin", 1, 1, models.TargetSelf)),
		hero("kim", "Kim", models.CategoryTank, plain("Rally"), plain("Hardened")),
		hero("marshall", "Marshall", models.CategoryTank, skill("Iron Line", 1, 0.5, models.TargetTeam), plain("Endure")),
		hero("murphy", "Murphy", models.CategoryTank, plain("Aegis"), skill("Guardian", 3, 0, models.TargetBack)),
		hero("scarlett", "Scarlett", models.CategoryTank, plain("Ignite"), plain("Fury")),
		hero("bolt", "Bolt", models.CategoryTank, plain("Shock"), plain("Brace")),
		hero("swift", "Swift", models.CategoryMissile, plain("Lock On"), plain("Evasion")),
		hero("tesla", "Tesla", models.CategoryMissile, plain("Coil"), plain("Conductor")),
		hero("mcgregor", "McGregor", models.CategoryMissile, plain("Suppress"), plain("Bunker")),
		hero("williams", "Williams", models.CategoryMissile, plain("Hold"), plain("Reload")),
		hero("stetmann", "Stetmann", models.CategoryMissile, plain("Overclock"), plain("Array")),
		hero("lucius", "Lucius", models.CategoryAircraft, plain("Air Cover"), plain("Wingman")),
		hero("dva", "DVA", models.CategoryAircraft, plain("Dogfight"), plain("Afterburner")),
		hero("shuyler", "Shuyler", models.CategoryAircraft, plain("Smoke"), plain("Ace")),
		hero("sarah", "Sarah", models.CategoryAircraft, plain("Sortie"), plain("Counter")),
		hero("morrison", "Morrison", models.CategoryAircraft, plain("Escort"), plain("Veteran")),
		hero("nerzi", "Nerzi", models.CategoryAircraft, plain("Cloak"), plain("Ghost")),
	}
	c, err := catalog.New(heroes)
	require.NoError(t, err)
	return c
}

func newTestStore(repo StateRepository) *SquadStore {
	store := NewSquadStore(repo, zap.NewNop())
	store.Load(context.Background())
	return store
}

func newTestPlanner(t *testing.T, repo StateRepository) *Planner {
	t.Helper()
	return NewPlanner(context.Background(), Dependencies{
		Repository: repo,
		Catalog:    testRoster(t),
		Layout:     DefaultLayout(),
		Logger:     zap.NewNop(),
	})
}
