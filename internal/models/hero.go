package models

import (
	"fmt"
	"strings"
)

// Category is the hero class; chips and meta rules key off it.
type Category string

const (
	CategoryTank     Category = "Tank"
	CategoryAircraft Category = "Aircraft"
	CategoryMissile  Category = "Missile"
)

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTank, CategoryAircraft, CategoryMissile:
		return true
	}
	return false
}

// SkillTarget is the closed set of slots a DR skill can buff.
type SkillTarget int

const (
	TargetNone SkillTarget = iota
	TargetTeam
	TargetFront
	TargetBack
	TargetSelf
)

// ParseSkillTarget maps the roster file spelling onto a SkillTarget. "all" is an alias of "team".
func ParseSkillTarget(s string) (SkillTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TargetNone, nil
	case "team", "all":
		return TargetTeam, nil
	case "front":
		return TargetFront, nil
	case "back":
		return TargetBack, nil
	case "self":
		return TargetSelf, nil
	}
	return TargetNone, fmt.Errorf("unknown skill target %q", s)
}

func (t SkillTarget) String() string {
	switch t {
	case TargetTeam:
		return "team"
	case TargetFront:
		return "front"
	case TargetBack:
		return "back"
	case TargetSelf:
		return "self"
	}
	return ""
}

// MarshalText lets both encoding/json and yaml.v3 write targets as strings.
func (t SkillTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SkillTarget) UnmarshalText(text []byte) error {
	parsed, err := ParseSkillTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SkillName identifies the two levelled skills of a slot.
type SkillName string

const (
	SkillTactics SkillName = "tactics"
	SkillPassive SkillName = "passive"
)

// ParseSkillName accepts both the short names and the "_lvl" suffixed form used by the browser tool.
func ParseSkillName(s string) (SkillName, bool) {
	switch strings.TrimSuffix(strings.ToLower(s), "_lvl") {
	case string(SkillTactics):
		return SkillTactics, true
	case string(SkillPassive):
		return SkillPassive, true
	}
	return "", false
}

// SkillDef describes one hero skill and, when HasDR is set, its DR formula.
type SkillDef struct {
	Name      string      `json:"name" yaml:"name"`
	HasDR     bool        `json:"hasDR" yaml:"hasDR"`
	Base      float64     `json:"base,omitempty" yaml:"base,omitempty"`
	Increment float64     `json:"inc,omitempty" yaml:"inc,omitempty"`
	Target    SkillTarget `json:"target,omitempty" yaml:"target,omitempty"`
}

// ValueAt is the DR percentage the skill grants at the given level.
func (s SkillDef) ValueAt(level int) float64 {
	return s.Base + float64(level)*s.Increment
}

type HeroSkills struct {
	Auto    SkillDef `json:"auto" yaml:"auto"`
	Tactics SkillDef `json:"tactics" yaml:"tactics"`
	Passive SkillDef `json:"passive" yaml:"passive"`
}

// Levelled returns the skill definition behind a levelled skill name.
func (s HeroSkills) Levelled(name SkillName) SkillDef {
	if name == SkillPassive {
		return s.Passive
	}
	return s.Tactics
}

// HeroDefinition is one immutable roster entry.
type HeroDefinition struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Category Category   `json:"cat" yaml:"cat"`
	Skills   HeroSkills `json:"skills" yaml:"skills"`
}

// RosterEntry is a hero as listed for the picker.
type RosterEntry struct {
	HeroDefinition
	InSquad bool `json:"in_squad"`
}
