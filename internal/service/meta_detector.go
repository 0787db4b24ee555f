package service

import (
	"github.com/shard-legends/squad-planner-service/internal/models"
)

var (
	airCore      = []string{"Lucius", "DVA", "Shuyler"}
	airFlex      = []string{"Sarah", "Morrison"}
	airAnchor    = "Murphy"
	tankCombo    = []string{"Scarlett", "Kim", "Murphy", "Adam", "Marshall"}
	missileCombo = []string{"Lucius", "Swift", "Tesla", "McGregor", "Adam"}
)

const (
	tankComboKey          = "Adam"
	tankComboMinWeapon    = 1
	missileComboKey       = "Lucius"
	missileComboMinWeapon = 10
	fullTankExcluded      = "Scarlett"
)

// MetaDetector classifies a squad by hero names and categories. Matching is by
// name, so renamed roster entries stop matching.
type MetaDetector struct{}

func NewMetaDetector() *MetaDetector {
	return &MetaDetector{}
}

type squadView struct {
	byName     map[string]models.SlotData
	categories map[models.Category]int
}

func newSquadView(squad *models.Squad) squadView {
	v := squadView{
		byName:     make(map[string]models.SlotData, models.SlotsPerSquad),
		categories: make(map[models.Category]int, 3),
	}
	for _, slot := range squad.Slots {
		if slot.IsEmpty() {
			continue
		}
		v.byName[slot.Name] = slot
		v.categories[slot.Category]++
	}
	return v
}

func (v squadView) has(name string) bool {
	_, ok := v.byName[name]
	return ok
}

func (v squadView) hasAll(names []string) bool {
	for _, n := range names {
		if !v.has(n) {
			return false
		}
	}
	return true
}

func (v squadView) hasAny(names []string) bool {
	for _, n := range names {
		if v.has(n) {
			return true
		}
	}
	return false
}

func (v squadView) weaponAtLeast(name string, level int) bool {
	slot, ok := v.byName[name]
	return ok && slot.ExWeaponLevel >= level
}

// Detect applies the meta rules in precedence order; the first match names the meta.
// Unlocked follows the air rule alone.
func (d *MetaDetector) Detect(squad *models.Squad) models.MetaStatus {
	v := newSquadView(squad)

	air := v.hasAll(airCore) && v.hasAny(airFlex) && v.has(airAnchor)
	status := models.MetaStatus{Unlocked: air}

	switch {
	case air:
		status.MetaType = models.MetaAir41
	case v.hasAll(tankCombo) && v.weaponAtLeast(tankComboKey, tankComboMinWeapon):
		status.MetaType = models.MetaTank41
	case v.hasAll(missileCombo) && v.weaponAtLeast(missileComboKey, missileComboMinWeapon):
		status.MetaType = models.MetaMissile41
	case v.categories[models.CategoryTank] == models.SlotsPerSquad && !v.has(fullTankExcluded):
		status.MetaType = models.MetaFullTank
	case v.categories[models.CategoryMissile] == models.SlotsPerSquad:
		status.MetaType = models.MetaFullMissile
	default:
		status.MetaType = models.MetaNone
	}
	return status
}
