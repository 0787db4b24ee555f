package models

import "fmt"

const (
	SquadCount    = 3
	SlotsPerSquad = 5

	MinExWeaponLevel = 1
	MaxExWeaponLevel = 30

	MinSkillLevel = 1
	// BaseSkillCap applies until the exclusive weapon reaches MaxExWeaponLevel.
	BaseSkillCap   = 30
	RaisedSkillCap = 40
)

// SkillLevels holds the player-entered levels of the two levelled skills.
type SkillLevels struct {
	Tactics int `json:"tactics" validate:"min=1,max=40"`
	Passive int `json:"passive" validate:"min=1,max=40"`
}

func (s SkillLevels) Get(name SkillName) int {
	if name == SkillPassive {
		return s.Passive
	}
	return s.Tactics
}

func (s *SkillLevels) Set(name SkillName, level int) {
	if name == SkillPassive {
		s.Passive = level
		return
	}
	s.Tactics = level
}

// SkillCap is the highest skill level allowed at an exclusive weapon level.
func SkillCap(exWeaponLevel int) int {
	if exWeaponLevel >= MaxExWeaponLevel {
		return RaisedSkillCap
	}
	return BaseSkillCap
}

// HeroLevels are the per-hero values that survive moving or removing a hero.
type HeroLevels struct {
	ExWeaponLevel int         `json:"ex_lvl" validate:"min=1,max=30"`
	Stars         int         `json:"stars" validate:"min=0"`
	Skills        SkillLevels `json:"skills"`
}

// DefaultHeroLevels are used for a hero that has never been slotted.
func DefaultHeroLevels() HeroLevels {
	return HeroLevels{
		ExWeaponLevel: MinExWeaponLevel,
		Stars:         0,
		Skills:        SkillLevels{Tactics: MinSkillLevel, Passive: MinSkillLevel},
	}
}

// SlotData is one squad position. An empty HeroID means the slot is free.
type SlotData struct {
	HeroID   string   `json:"id" validate:"max=64"`
	Name     string   `json:"name,omitempty" validate:"max=64"`
	Category Category `json:"cat,omitempty" validate:"omitempty,oneof=Tank Aircraft Missile"`
	HeroLevels
}

// EmptySlot returns a free slot with default levels.
func EmptySlot() SlotData {
	return SlotData{HeroLevels: DefaultHeroLevels()}
}

func (s SlotData) IsEmpty() bool {
	return s.HeroID == ""
}

// Squad is a named formation of exactly five positions.
type Squad struct {
	Name  string                  `json:"name" validate:"max=64"`
	Slots [SlotsPerSquad]SlotData `json:"slots" validate:"dive"`
}

// GlobalStat is one account-wide bonus source. The reductions are derived from Level.
type GlobalStat struct {
	Level             int     `json:"level" validate:"min=0"`
	PhysicalReduction float64 `json:"calculatedPhysicalReduction"`
	EnergyReduction   float64 `json:"calculatedEnergyReduction"`
	Description       string  `json:"description,omitempty"`
}

// AppState is the whole persisted planner state.
type AppState struct {
	CurrentSquadIdx int                   `json:"currentSquadIdx" validate:"min=0,max=2"`
	Squads          [SquadCount]Squad     `json:"squads" validate:"dive"`
	GlobalBaseStats map[string]GlobalStat `json:"globalBaseStats" validate:"dive"`
	HeroStats       map[string]HeroLevels `json:"heroStats" validate:"dive"`
}

// NewAppState returns factory defaults: three empty squads and every global stat at level 0.
func NewAppState() *AppState {
	state := &AppState{
		GlobalBaseStats: make(map[string]GlobalStat, len(GlobalStatDefinitions)),
		HeroStats:       make(map[string]HeroLevels),
	}
	for i := range state.Squads {
		state.Squads[i] = NewSquad(i)
	}
	for _, def := range GlobalStatDefinitions {
		state.GlobalBaseStats[def.Key] = DeriveGlobalStat(def.Key, 0)
	}
	return state
}

// NewSquad returns the empty squad for position idx, named "Squad <idx+1>".
func NewSquad(idx int) Squad {
	squad := Squad{Name: squadName(idx)}
	for i := range squad.Slots {
		squad.Slots[i] = EmptySlot()
	}
	return squad
}

func squadName(idx int) string {
	return fmt.Sprintf("Squad %d", idx+1)
}

// CurrentSquad returns the active squad.
func (s *AppState) CurrentSquad() *Squad {
	return &s.Squads[s.CurrentSquadIdx]
}

// Clone returns a deep copy safe to hand out of the store.
func (s *AppState) Clone() *AppState {
	out := *s
	out.GlobalBaseStats = make(map[string]GlobalStat, len(s.GlobalBaseStats))
	for k, v := range s.GlobalBaseStats {
		out.GlobalBaseStats[k] = v
	}
	out.HeroStats = make(map[string]HeroLevels, len(s.HeroStats))
	for k, v := range s.HeroStats {
		out.HeroStats[k] = v
	}
	return &out
}

// SlotRef addresses one slot across all squads.
type SlotRef struct {
	Squad int `json:"squad"`
	Slot  int `json:"slot"`
}

// FindHero scans every squad for heroID.
func (s *AppState) FindHero(heroID string) (SlotRef, bool) {
	if heroID == "" {
		return SlotRef{}, false
	}
	for sq := range s.Squads {
		for sl := range s.Squads[sq].Slots {
			if s.Squads[sq].Slots[sl].HeroID == heroID {
				return SlotRef{Squad: sq, Slot: sl}, true
			}
		}
	}
	return SlotRef{}, false
}

// AssignedHeroIDs returns the set of hero ids present in any squad.
func (s *AppState) AssignedHeroIDs() map[string]bool {
	ids := make(map[string]bool)
	for sq := range s.Squads {
		for _, slot := range s.Squads[sq].Slots {
			if !slot.IsEmpty() {
				ids[slot.HeroID] = true
			}
		}
	}
	return ids
}
