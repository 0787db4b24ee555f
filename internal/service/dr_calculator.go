package service

import (
	"github.com/shard-legends/squad-planner-service/internal/models"
)

// Layout marks which positions are front line and the divisors applied to
// self-targeted skills on each line.
type Layout struct {
	Front            [models.SlotsPerSquad]bool
	FrontSelfDivisor float64
	BackSelfDivisor  float64
}

// NewLayout builds a layout from front-line positions. Out-of-range positions are ignored.
func NewLayout(frontSlots []int, frontSelfDivisor, backSelfDivisor float64) Layout {
	l := Layout{FrontSelfDivisor: frontSelfDivisor, BackSelfDivisor: backSelfDivisor}
	for _, idx := range frontSlots {
		if idx >= 0 && idx < models.SlotsPerSquad {
			l.Front[idx] = true
		}
	}
	return l
}

// DefaultLayout has positions 0 and 1 on the front line, self skills halved there and thirded behind.
func DefaultLayout() Layout {
	return NewLayout([]int{0, 1}, 2, 3)
}

func (l Layout) selfDivisor(slot int) float64 {
	if l.Front[slot] {
		return l.FrontSelfDivisor
	}
	return l.BackSelfDivisor
}

// DRCalculator computes per-slot damage reduction. It holds no state of its own.
type DRCalculator struct {
	layout  Layout
	catalog HeroCatalog
}

func NewDRCalculator(layout Layout, catalog HeroCatalog) *DRCalculator {
	return &DRCalculator{layout: layout, catalog: catalog}
}

type skillPools struct {
	team  float64
	front float64
	back  float64
	self  [models.SlotsPerSquad]float64
}

// SquadDR returns physical and energy DR for all five slots of squad squadIdx.
// Empty slots receive the global stats that apply to everyone plus the line pools.
func (c *DRCalculator) SquadDR(state *models.AppState, squadIdx int) []models.SlotDR {
	squad := &state.Squads[squadIdx]
	pools := c.skillPools(squad)

	out := make([]models.SlotDR, models.SlotsPerSquad)
	for i, slot := range squad.Slots {
		phys, ener := globalReduction(state.GlobalBaseStats, slot.Category)

		skills := pools.team + pools.self[i]
		if c.layout.Front[i] {
			skills += pools.front
		} else {
			skills += pools.back
		}
		phys += skills
		ener += skills

		out[i] = models.SlotDR{
			Slot:         i,
			Physical:     phys,
			Energy:       ener,
			PhysicalTier: models.TierFor(phys),
			EnergyTier:   models.TierFor(ener),
		}
	}
	return out
}

// skillPools sums every DR skill of the squad's heroes into the pool its target feeds.
func (c *DRCalculator) skillPools(squad *models.Squad) skillPools {
	var p skillPools
	for i, slot := range squad.Slots {
		if slot.IsEmpty() {
			continue
		}
		hero, ok := c.catalog.Lookup(slot.HeroID)
		if !ok {
			continue
		}
		for _, name := range []models.SkillName{models.SkillTactics, models.SkillPassive} {
			def := hero.Skills.Levelled(name)
			if !def.HasDR {
				continue
			}
			value := def.ValueAt(slot.Skills.Get(name))
			switch def.Target {
			case models.TargetTeam:
				p.team += value
			case models.TargetFront:
				p.front += value
			case models.TargetBack:
				p.back += value
			case models.TargetSelf:
				p.self[i] += value / c.layout.selfDivisor(i)
			case models.TargetNone:
			}
		}
	}
	return p
}

// globalReduction adds up global stats in definition order so repeated calls are bit-identical.
func globalReduction(stats map[string]models.GlobalStat, cat models.Category) (phys, ener float64) {
	for _, def := range models.GlobalStatDefinitions {
		if !def.AppliesTo(cat) {
			continue
		}
		stat := stats[def.Key]
		phys += stat.PhysicalReduction
		ener += stat.EnergyReduction
	}
	return phys, ener
}
