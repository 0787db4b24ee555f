package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

func TestEncodeSnapshot_EmptySlotsHaveNullID(t *testing.T) {
	state := models.NewAppState()
	state.Squads[0].Slots[1] = models.SlotData{
		HeroID:     "h_adam",
		Name:       "Adam",
		Category:   models.CategoryTank,
		HeroLevels: models.HeroLevels{ExWeaponLevel: 12, Stars: 3, Skills: models.SkillLevels{Tactics: 20, Passive: 5}},
	}

	data, err := EncodeSnapshot(state)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	squads := doc["squads"].([]interface{})
	require.Len(t, squads, models.SquadCount)
	slots := squads[0].(map[string]interface{})["slots"].([]interface{})
	require.Len(t, slots, models.SlotsPerSquad)
	assert.Nil(t, slots[0].(map[string]interface{})["id"])
	assert.Equal(t, "h_adam", slots[1].(map[string]interface{})["id"])
	assert.Equal(t, 12.0, slots[1].(map[string]interface{})["ex_lvl"])
}

func TestSnapshot_RoundTrip(t *testing.T) {
	state := models.NewAppState()
	state.CurrentSquadIdx = 2
	state.Squads[2].Name = "Raid"
	state.Squads[2].Slots[4] = models.SlotData{
		HeroID:     "h_kim",
		Name:       "Kim",
		Category:   models.CategoryTank,
		HeroLevels: models.HeroLevels{ExWeaponLevel: 25, Stars: 2, Skills: models.SkillLevels{Tactics: 33, Passive: 7}},
	}
	state.GlobalBaseStats[models.StatDroneLevel] = models.DeriveGlobalStat(models.StatDroneLevel, 210)
	state.HeroStats["h_swift"] = models.HeroLevels{ExWeaponLevel: 3, Skills: models.SkillLevels{Tactics: 4, Passive: 5}}

	data, err := EncodeSnapshot(state)
	require.NoError(t, err)
	got, err := DecodeSnapshot(data, Strict)

	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestDecodeSnapshot_LegacyObjectShape(t *testing.T) {
	legacy := `{
		"global": "44.0",
		"squads": {
			"1": {"slots": {"0": {"id": "h_adam", "name": "Adam", "ex_lvl": "7", "skills": {"tactics": 9, "passive": "3"}}}},
			"2": {"slots": {"3": {"id": "h_kim", "name": "Kim", "ex_lvl": 1, "skills": {"tactics": 1, "passive": 1}}}},
			"3": {"slots": {}}
		}
	}`

	state, err := DecodeSnapshot([]byte(legacy), Lenient)

	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentSquadIdx)
	assert.Equal(t, "Squad 1", state.Squads[0].Name)
	adam := state.Squads[0].Slots[0]
	assert.Equal(t, "h_adam", adam.HeroID)
	assert.Equal(t, 7, adam.ExWeaponLevel)
	assert.Equal(t, models.SkillLevels{Tactics: 9, Passive: 3}, adam.Skills)
	assert.Equal(t, "h_kim", state.Squads[1].Slots[3].HeroID)
	assert.True(t, state.Squads[1].Slots[0].IsEmpty())
	assert.True(t, state.Squads[2].Slots[4].IsEmpty())
	assert.Equal(t, 44, state.GlobalBaseStats[models.StatOtherReduction].Level)
	assert.Equal(t, 44.0, state.GlobalBaseStats[models.StatOtherReduction].PhysicalReduction)
	assert.Len(t, state.GlobalBaseStats, len(models.GlobalStatDefinitions))
}

func TestDecodeSnapshot_ArrayShapeWithNulls(t *testing.T) {
	doc := `{
		"currentSquadIdx": 1,
		"squads": [
			{"name": "Main", "slots": [null, {"id": "h_swift", "name": "Swift", "cat": "Missile", "ex_lvl": 4, "stars": 1, "skills": {"tactics": 2, "passive": 2}}]},
			null,
			{"name": "Alt"}
		],
		"globalBaseStats": {"sf_advanced_protection_1": {"level": 4, "calculatedPhysicalReduction": 999}},
		"heroStats": {"h_adam": {"ex_lvl": 5, "skills": {"tactics": 6, "passive": 7}}}
	}`

	state, err := DecodeSnapshot([]byte(doc), Strict)

	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentSquadIdx)
	assert.Equal(t, "Main", state.Squads[0].Name)
	assert.True(t, state.Squads[0].Slots[0].IsEmpty())
	assert.Equal(t, models.CategoryMissile, state.Squads[0].Slots[1].Category)
	assert.Equal(t, "Squad 2", state.Squads[1].Name)
	assert.Equal(t, "Alt", state.Squads[2].Name)
	assert.Equal(t, 6.0, state.GlobalBaseStats[models.StatAdvancedProtection1].PhysicalReduction)
	assert.Equal(t, 7, state.HeroStats["h_adam"].Skills.Passive)
}

func TestDecodeSnapshot_StrictRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `squads`},
		{name: "top level array", doc: `[1, 2, 3]`},
		{name: "missing squads", doc: `{"currentSquadIdx": 0}`},
		{name: "too many squads", doc: `{"squads": [{}, {}, {}, {}]}`},
		{name: "too many slots", doc: `{"squads": [{"slots": [null, null, null, null, null, null]}]}`},
		{name: "bad squad key", doc: `{"squads": {"alpha": {}}}`},
		{name: "squad index out of range", doc: `{"squads": {"0": {}, "5": {}}}`},
		{name: "unknown stat", doc: `{"squads": [], "globalBaseStats": {"shield_lvl": {"level": 1}}}`},
		{name: "slot is a number", doc: `{"squads": [{"slots": [7]}]}`},
		{name: "squads is a string", doc: `{"squads": "three"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tt.doc), Strict)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestDecodeSnapshot_LenientRepairs(t *testing.T) {
	doc := `{
		"currentSquadIdx": 9,
		"squads": [
			{"slots": [
				{"id": "h_adam", "ex_lvl": 99, "stars": -4, "skills": {"tactics": 50, "passive": 0}},
				{"id": "h_adam", "ex_lvl": 3},
				7
			]}
		],
		"globalBaseStats": {"shield_lvl": {"level": 3}, "drone_lvl": {"level": "-5"}}
	}`

	state, err := DecodeSnapshot([]byte(doc), Lenient)

	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentSquadIdx)
	adam := state.Squads[0].Slots[0]
	assert.Equal(t, models.MaxExWeaponLevel, adam.ExWeaponLevel)
	assert.Equal(t, 0, adam.Stars)
	assert.Equal(t, models.SkillLevels{Tactics: models.RaisedSkillCap, Passive: models.MinSkillLevel}, adam.Skills)
	assert.True(t, state.Squads[0].Slots[1].IsEmpty())
	assert.True(t, state.Squads[0].Slots[2].IsEmpty())
	assert.NotContains(t, state.GlobalBaseStats, "shield_lvl")
	assert.Equal(t, 0, state.GlobalBaseStats[models.StatDroneLevel].Level)
	require.NoError(t, models.ValidateAppState(state))
}

func TestDecodeSnapshot_LenientStillRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte("{not json"), Lenient)
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}

func TestDecodeSnapshot_EmptyIDIsEmptySlot(t *testing.T) {
	doc := `{"squads": [{"slots": [{"id": "", "name": "Ghost", "ex_lvl": 20}]}]}`

	state, err := DecodeSnapshot([]byte(doc), Strict)

	require.NoError(t, err)
	assert.Equal(t, models.EmptySlot(), state.Squads[0].Slots[0])
}

func TestDecodeSnapshot_BrowserExportImports(t *testing.T) {
	empty := `{"id": null, "ex_lvl": 0, "stars": 0, "skills": {"tactics": 1, "passive": 1}}`
	doc := `{
		"currentSquadIdx": 0,
		"squads": [
			{"name": "Squad 1", "slots": [
				{"id": "h_adam", "name": "Adam", "cat": "Tank", "ex_lvl": 0, "stars": 0, "skills": {"tactics": 1, "passive": 1}},
				` + empty + `, ` + empty + `, ` + empty + `, ` + empty + `
			]},
			{"name": "Squad 2", "slots": [` + empty + `, ` + empty + `, ` + empty + `, ` + empty + `, ` + empty + `]},
			{"name": "Squad 3", "slots": [` + empty + `, ` + empty + `, ` + empty + `, ` + empty + `, ` + empty + `]}
		],
		"globalBaseStats": {
			"sf_advanced_protection_1": {"level": 4, "calculatedPhysicalReduction": 0, "calculatedEnergyReduction": 0}
		},
		"heroStats": {
			"h_kim": {"id": "h_kim", "ex_lvl": 0, "stars": 2, "skills": {"tactics": 3, "passive": 1}}
		}
	}`

	state, err := DecodeSnapshot([]byte(doc), Strict)
	require.NoError(t, err)
	require.NoError(t, models.ValidateAppState(state))

	adam := state.Squads[0].Slots[0]
	assert.Equal(t, "h_adam", adam.HeroID)
	assert.Equal(t, models.MinExWeaponLevel, adam.ExWeaponLevel)
	assert.True(t, state.Squads[0].Slots[1].IsEmpty())
	assert.Equal(t, models.MinExWeaponLevel, state.HeroStats["h_kim"].ExWeaponLevel)
	assert.Equal(t, 2, state.HeroStats["h_kim"].Stars)
	assert.Equal(t, 3, state.HeroStats["h_kim"].Skills.Tactics)
	assert.Equal(t, 4, state.GlobalBaseStats[models.StatAdvancedProtection1].Level)
}

func TestDecodeSnapshot_FloorsLevelsBelowMinimum(t *testing.T) {
	doc := `{"squads": [{"slots": [{"id": "h_adam", "ex_lvl": -3, "stars": -1, "skills": {"tactics": 0, "passive": "0"}}]}]}`

	state, err := DecodeSnapshot([]byte(doc), Strict)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultHeroLevels(), state.Squads[0].Slots[0].HeroLevels)
}
