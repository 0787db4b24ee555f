package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    SkillTarget
		wantErr bool
	}{
		{in: "team", want: TargetTeam},
		{in: "all", want: TargetTeam},
		{in: "Front", want: TargetFront},
		{in: "back", want: TargetBack},
		{in: "self", want: TargetSelf},
		{in: "", want: TargetNone},
		{in: "enemy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSkillTarget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkillDef_JSON(t *testing.T) {
	var def SkillDef
	err := json.Unmarshal([]byte(`{"name":"Iron Wall","hasDR":true,"base":2,"inc":0.5,"target":"all"}`), &def)

	require.NoError(t, err)
	assert.Equal(t, TargetTeam, def.Target)
	assert.Equal(t, 0.5, def.Increment)
	assert.Equal(t, 7.0, def.ValueAt(10))

	out, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"target":"team"`)
}

func TestSkillDef_UnknownTargetRejected(t *testing.T) {
	var def SkillDef
	err := json.Unmarshal([]byte(`{"name":"x","hasDR":true,"target":"enemy"}`), &def)

	assert.Error(t, err)
}

func TestParseSkillName(t *testing.T) {
	name, ok := ParseSkillName("tactics_lvl")
	assert.True(t, ok)
	assert.Equal(t, SkillTactics, name)

	name, ok = ParseSkillName("passive")
	assert.True(t, ok)
	assert.Equal(t, SkillPassive, name)

	_, ok = ParseSkillName("auto")
	assert.False(t, ok)
}

func TestRawValue(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		fallback int
		want     int
	}{
		{name: "number", body: `{"value":12}`, fallback: 0, want: 12},
		{name: "string", body: `{"value":"25"}`, fallback: 0, want: 25},
		{name: "leading digits", body: `{"value":"12abc"}`, fallback: 0, want: 12},
		{name: "float truncates", body: `{"value":7.9}`, fallback: 0, want: 7},
		{name: "garbage", body: `{"value":"abc"}`, fallback: 1, want: 1},
		{name: "null", body: `{"value":null}`, fallback: 0, want: 0},
		{name: "missing", body: `{}`, fallback: 1, want: 1},
		{name: "negative", body: `{"value":"-4"}`, fallback: 1, want: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SetValueRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Value.Int(tt.fallback))
		})
	}
}

func TestUpdateSlotRequest_ToUpdate(t *testing.T) {
	var req UpdateSlotRequest
	require.NoError(t, json.Unmarshal([]byte(`{"ex_weapon_level":"oops"}`), &req))

	u := req.ToUpdate()

	require.NotNil(t, u.ExWeaponLevel)
	assert.Equal(t, MinExWeaponLevel, *u.ExWeaponLevel)
	assert.Nil(t, u.Stars)
}

func TestDeriveGlobalStat(t *testing.T) {
	tests := []struct {
		key      string
		level    int
		wantPhys float64
		wantEner float64
	}{
		{key: StatAdvancedProtection1, level: 10, wantPhys: 15, wantEner: 15},
		{key: StatAdvancedProtection2, level: 3, wantPhys: 4.5, wantEner: 4.5},
		{key: StatDroneLevel, level: 199, wantPhys: 0, wantEner: 0},
		{key: StatDroneLevel, level: 200, wantPhys: 5, wantEner: 5},
		{key: StatQuantumChipTank, level: 50, wantPhys: 0, wantEner: 0},
		{key: StatOtherReduction, level: 12, wantPhys: 12, wantEner: 12},
		{key: "unknown", level: 9, wantPhys: 0, wantEner: 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			stat := DeriveGlobalStat(tt.key, tt.level)
			assert.Equal(t, tt.level, stat.Level)
			assert.Equal(t, tt.wantPhys, stat.PhysicalReduction)
			assert.Equal(t, tt.wantEner, stat.EnergyReduction)
		})
	}
}

func TestGlobalStatDefinition_AppliesTo(t *testing.T) {
	chip, ok := LookupGlobalStat(StatMemoryChipMissile)
	require.True(t, ok)
	assert.True(t, chip.AppliesTo(CategoryMissile))
	assert.False(t, chip.AppliesTo(CategoryTank))
	assert.False(t, chip.AppliesTo(""))

	drone, _ := LookupGlobalStat(StatDroneLevel)
	assert.True(t, drone.AppliesTo(""))
}

func TestNewAppState(t *testing.T) {
	state := NewAppState()

	assert.Equal(t, 0, state.CurrentSquadIdx)
	assert.Equal(t, "Squad 2", state.Squads[1].Name)
	assert.Len(t, state.GlobalBaseStats, len(GlobalStatDefinitions))
	for _, squad := range state.Squads {
		for _, slot := range squad.Slots {
			assert.True(t, slot.IsEmpty())
			assert.Equal(t, DefaultHeroLevels(), slot.HeroLevels)
		}
	}
	assert.NoError(t, ValidateAppState(state))
}

func TestAppState_CloneIsDeep(t *testing.T) {
	state := NewAppState()
	state.HeroStats["h1"] = DefaultHeroLevels()

	clone := state.Clone()
	clone.Squads[0].Slots[0].HeroID = "h2"
	clone.HeroStats["h1"] = HeroLevels{ExWeaponLevel: 9}
	clone.GlobalBaseStats[StatOtherReduction] = DeriveGlobalStat(StatOtherReduction, 4)

	assert.True(t, state.Squads[0].Slots[0].IsEmpty())
	assert.Equal(t, MinExWeaponLevel, state.HeroStats["h1"].ExWeaponLevel)
	assert.Equal(t, 0, state.GlobalBaseStats[StatOtherReduction].Level)
}

func TestValidateAppState(t *testing.T) {
	occupied := func(id string, ex, tactics int) SlotData {
		return SlotData{HeroID: id, Name: id, Category: CategoryTank, HeroLevels: HeroLevels{
			ExWeaponLevel: ex, Skills: SkillLevels{Tactics: tactics, Passive: 1},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(s *AppState)
		wantErr bool
	}{
		{name: "defaults", mutate: func(s *AppState) {}},
		{name: "raised cap at ex 30", mutate: func(s *AppState) { s.Squads[0].Slots[0] = occupied("a", 30, 40) }},
		{name: "skill above cap", mutate: func(s *AppState) { s.Squads[0].Slots[0] = occupied("a", 29, 31) }, wantErr: true},
		{name: "duplicate hero", mutate: func(s *AppState) {
			s.Squads[0].Slots[0] = occupied("a", 1, 1)
			s.Squads[2].Slots[4] = occupied("a", 1, 1)
		}, wantErr: true},
		{name: "current index", mutate: func(s *AppState) { s.CurrentSquadIdx = 3 }, wantErr: true},
		{name: "unknown stat", mutate: func(s *AppState) { s.GlobalBaseStats["mystery"] = GlobalStat{} }, wantErr: true},
		{name: "large star count", mutate: func(s *AppState) {
			slot := occupied("e", 30, 40)
			slot.Stars = 250
			s.Squads[2].Slots[0] = slot
		}},
		{name: "negative stars", mutate: func(s *AppState) {
			slot := occupied("f", 1, 1)
			slot.Stars = -1
			s.Squads[2].Slots[1] = slot
		}, wantErr: true},
		{name: "ex weapon zero", mutate: func(s *AppState) { s.Squads[1].Slots[2] = occupied("b", 0, 1) }, wantErr: true},
		{name: "bad category", mutate: func(s *AppState) {
			slot := occupied("c", 1, 1)
			slot.Category = "Boat"
			s.Squads[1].Slots[2] = slot
		}, wantErr: true},
		{name: "archived skill above cap", mutate: func(s *AppState) {
			s.HeroStats["d"] = HeroLevels{ExWeaponLevel: 5, Skills: SkillLevels{Tactics: 35, Passive: 1}}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewAppState()
			tt.mutate(state)

			err := ValidateAppState(state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSnapshot)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierDanger, TierFor(85))
	assert.Equal(t, TierWarning, TierFor(70))
	assert.Equal(t, TierWarning, TierFor(84.99))
	assert.Equal(t, TierBase, TierFor(69.9))
}

func TestValidateRequest(t *testing.T) {
	idx := 3
	err := ValidateRequest(&SwitchSquadRequest{Index: &idx})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	err = ValidateRequest(&SwitchSquadRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	idx = 2
	assert.NoError(t, ValidateRequest(&SwitchSquadRequest{Index: &idx}))
	assert.ErrorIs(t, ValidateRequest(&AssignHeroRequest{}), ErrInvalidRequest)
}
