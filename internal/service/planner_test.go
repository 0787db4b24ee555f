package service

import (
	"context"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shard-legends/squad-planner-service/internal/catalog"
	"github.com/shard-legends/squad-planner-service/internal/models"
	"github.com/shard-legends/squad-planner-service/pkg/metrics"
)

func TestPlanner_StateView(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())

	_, err := planner.SetGlobalStatLevel(ctx, models.StatAdvancedProtection2, "10")
	require.NoError(t, err)
	for i, id := range []string{"lucius", "dva", "shuyler", "sarah", "murphy"} {
		_, err := planner.AssignHero(ctx, id, 0, i)
		require.NoError(t, err)
	}

	view := planner.State(ctx)

	assert.Equal(t, models.MetaAir41, view.Meta.MetaType)
	assert.True(t, view.Meta.Unlocked)
	require.Len(t, view.SquadDR, models.SlotsPerSquad)
	assert.GreaterOrEqual(t, view.SquadDR[0].Physical, 15.0)
	assert.False(t, view.SkipMoves)
}

func metaDetections(t *testing.T, metaType models.MetaType) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, metrics.MetaDetectionsTotal.WithLabelValues(string(metaType)).Write(m))
	return m.GetCounter().GetValue()
}

func TestPlanner_MetaDetectionsCountedOnStateAndMeta(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())
	for i, id := range []string{"lucius", "dva", "shuyler", "sarah", "murphy"} {
		_, err := planner.AssignHero(ctx, id, 0, i)
		require.NoError(t, err)
	}
	before := metaDetections(t, models.MetaAir41)

	planner.State(ctx)
	planner.Meta(ctx)

	assert.Equal(t, before+2, metaDetections(t, models.MetaAir41))
}

func TestPlanner_StateIsACopy(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())

	view := planner.State(ctx)
	view.State.Squads[0].Slots[0].HeroID = "tampered"

	assert.True(t, planner.Export(ctx).Squads[0].Slots[0].IsEmpty())
}

func TestPlanner_ListHeroes(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())
	_, err := planner.AssignHero(ctx, "adam", 1, 0)
	require.NoError(t, err)

	list := planner.ListHeroes(ctx, catalog.FilterAll, "")

	for _, h := range list.Heroes {
		assert.NotEqual(t, catalog.UnlockableHeroName, h.Name)
		assert.Equal(t, h.ID == "adam", h.InSquad, h.ID)
	}
	assert.Equal(t, len(list.Heroes), list.Total)

	for i, id := range []string{"lucius", "dva", "shuyler", "morrison", "murphy"} {
		_, err := planner.AssignHero(ctx, id, 0, i)
		require.NoError(t, err)
	}
	list = planner.ListHeroes(ctx, string(models.CategoryAircraft), "ner")

	require.Len(t, list.Heroes, 1)
	assert.Equal(t, "nerzi", list.Heroes[0].ID)
}

func TestPlanner_UpdateSkillLevel_ParsesName(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())

	slot, err := planner.UpdateSkillLevel(ctx, 0, "passive_lvl", "6")
	require.NoError(t, err)
	assert.Equal(t, 6, slot.Skills.Passive)

	_, err = planner.UpdateSkillLevel(ctx, 0, "auto", "6")
	assert.ErrorIs(t, err, ErrUnknownSkill)
}

func TestPlanner_Import(t *testing.T) {
	ctx := context.Background()
	repo := newEmptyRepo()
	planner := newTestPlanner(t, repo)

	incoming := models.NewAppState()
	incoming.CurrentSquadIdx = 1
	incoming.Squads[1].Slots[0] = models.SlotData{HeroID: "adam", Name: "Old Name", HeroLevels: models.HeroLevels{ExWeaponLevel: 30, Skills: models.SkillLevels{Tactics: 40, Passive: 1}}}
	incoming.GlobalBaseStats[models.StatAdvancedProtection1] = models.GlobalStat{Level: 4, PhysicalReduction: 999}
	delete(incoming.GlobalBaseStats, models.StatOtherReduction)

	require.NoError(t, planner.Import(ctx, incoming))

	state := planner.Export(ctx)
	assert.Equal(t, 1, state.CurrentSquadIdx)
	assert.Equal(t, "Adam", state.Squads[1].Slots[0].Name)
	assert.Equal(t, models.CategoryTank, state.Squads[1].Slots[0].Category)
	assert.Equal(t, 6.0, state.GlobalBaseStats[models.StatAdvancedProtection1].PhysicalReduction)
	assert.Contains(t, state.GlobalBaseStats, models.StatOtherReduction)
	repo.AssertCalled(t, "SaveState", mock.Anything, mock.Anything)
}

func TestPlanner_Import_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newEmptyRepo()
	planner := newTestPlanner(t, repo)
	before := planner.Export(ctx)

	incoming := models.NewAppState()
	incoming.Squads[0].Slots[0] = models.SlotData{HeroID: "adam", HeroLevels: models.DefaultHeroLevels()}
	incoming.Squads[1].Slots[0] = models.SlotData{HeroID: "adam", HeroLevels: models.DefaultHeroLevels()}

	err := planner.Import(ctx, incoming)

	assert.ErrorIs(t, err, models.ErrInvalidSnapshot)
	assert.Equal(t, before, planner.Export(ctx))
	repo.AssertNotCalled(t, "SaveState", mock.Anything, mock.Anything)
}

func TestPlanner_ResetDropsPendingMove(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())

	_, err := planner.AssignHero(ctx, "adam", 0, 0)
	require.NoError(t, err)
	pending, err := planner.AssignHero(ctx, "adam", 1, 0)
	require.NoError(t, err)
	require.Equal(t, models.AssignStatusConfirmationRequired, pending.Status)

	require.NoError(t, planner.Reset(ctx))

	_, err = planner.ConfirmMove(ctx, pending.Pending.ID, false)
	assert.ErrorIs(t, err, ErrMoveNotFound)
	assert.Equal(t, models.NewAppState(), planner.Export(ctx))
}

func TestPlanner_MoveGatingAcrossSquads(t *testing.T) {
	ctx := context.Background()
	planner := newTestPlanner(t, newEmptyRepo())

	_, err := planner.AssignHero(ctx, "kim", 0, 2)
	require.NoError(t, err)
	result, err := planner.AssignHero(ctx, "kim", 1, 0)
	require.NoError(t, err)
	require.Equal(t, models.AssignStatusConfirmationRequired, result.Status)
	assert.Equal(t, "kim", planner.Export(ctx).Squads[0].Slots[2].HeroID)

	_, err = planner.ConfirmMove(ctx, result.Pending.ID, true)
	require.NoError(t, err)

	_, err = planner.AssignHero(ctx, "swift", 2, 4)
	require.NoError(t, err)
	result, err = planner.AssignHero(ctx, "swift", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, models.AssignStatusAssigned, result.Status)
	assert.True(t, planner.State(ctx).SkipMoves)
}
