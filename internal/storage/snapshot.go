package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// DecodeMode selects how forgiving DecodeSnapshot is.
type DecodeMode int

const (
	// Lenient repairs what it can. Used for the stored snapshot.
	Lenient DecodeMode = iota
	// Strict rejects structural problems. Used for user imports.
	Strict
)

// ErrMalformedSnapshot is returned when a snapshot cannot be turned into a planner state.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

type wireSnapshot struct {
	CurrentSquadIdx *models.RawValue       `json:"currentSquadIdx"`
	Global          *models.RawValue       `json:"global"`
	Squads          json.RawMessage        `json:"squads"`
	GlobalBaseStats map[string]wireStat    `json:"globalBaseStats"`
	HeroStats       map[string]*wireLevels `json:"heroStats"`
}

type wireSquad struct {
	Name  string          `json:"name"`
	Slots json.RawMessage `json:"slots"`
}

type wireStat struct {
	Level models.RawValue `json:"level"`
}

type wireSkills struct {
	Tactics models.RawValue `json:"tactics"`
	Passive models.RawValue `json:"passive"`
}

type wireLevels struct {
	ExLvl  *models.RawValue `json:"ex_lvl"`
	Stars  *models.RawValue `json:"stars"`
	Skills *wireSkills      `json:"skills"`
}

type wireSlot struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
	Cat  string  `json:"cat"`
	wireLevels
}

// outSlot writes empty slots with "id": null like the browser tool does.
type outSlot struct {
	ID       *string            `json:"id"`
	Name     string             `json:"name,omitempty"`
	Category models.Category    `json:"cat,omitempty"`
	ExLvl    int                `json:"ex_lvl"`
	Stars    int                `json:"stars"`
	Skills   models.SkillLevels `json:"skills"`
}

type outSquad struct {
	Name  string    `json:"name"`
	Slots []outSlot `json:"slots"`
}

type outSnapshot struct {
	CurrentSquadIdx int                          `json:"currentSquadIdx"`
	Squads          []outSquad                   `json:"squads"`
	GlobalBaseStats map[string]models.GlobalStat `json:"globalBaseStats"`
	HeroStats       map[string]models.HeroLevels `json:"heroStats"`
}

// EncodeSnapshot serialises state in the browser tool's snapshot layout.
func EncodeSnapshot(state *models.AppState) ([]byte, error) {
	out := outSnapshot{
		CurrentSquadIdx: state.CurrentSquadIdx,
		Squads:          make([]outSquad, 0, models.SquadCount),
		GlobalBaseStats: state.GlobalBaseStats,
		HeroStats:       state.HeroStats,
	}
	for _, squad := range state.Squads {
		os := outSquad{Name: squad.Name, Slots: make([]outSlot, 0, models.SlotsPerSquad)}
		for _, slot := range squad.Slots {
			s := outSlot{
				Name:     slot.Name,
				Category: slot.Category,
				ExLvl:    slot.ExWeaponLevel,
				Stars:    slot.Stars,
				Skills:   slot.Skills,
			}
			if !slot.IsEmpty() {
				id := slot.HeroID
				s.ID = &id
			}
			os.Slots = append(os.Slots, s)
		}
		out.Squads = append(out.Squads, os)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot and normalises its shape: squads and slots
// may be arrays or objects keyed by index, null or missing slots become empty
// slots at their position. The result always has 3 squads of 5 slots.
// Lenient mode also sanitises values; Strict mode leaves range checks to
// models.ValidateAppState.
func DecodeSnapshot(data []byte, mode DecodeMode) (*models.AppState, error) {
	var wire wireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrapf(ErrMalformedSnapshot, "parse: %v", err)
	}

	state := models.NewAppState()

	if wire.CurrentSquadIdx != nil {
		state.CurrentSquadIdx = wire.CurrentSquadIdx.Int(0)
	}

	squads, err := decodeIndexed(wire.Squads, models.SquadCount, true, mode)
	if err != nil {
		return nil, errors.Wrap(err, "squads")
	}
	if squads == nil && mode == Strict {
		return nil, errors.Wrap(ErrMalformedSnapshot, "squads are missing")
	}
	for idx, raw := range squads {
		squad, err := decodeSquad(idx, raw, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "squad %d", idx)
		}
		state.Squads[idx] = squad
	}

	if err := decodeStats(state, wire, mode); err != nil {
		return nil, err
	}

	for heroID, levels := range wire.HeroStats {
		if heroID == "" || levels == nil {
			continue
		}
		state.HeroStats[heroID] = levels.toLevels()
	}

	if mode == Lenient {
		Sanitize(state)
	}
	return state, nil
}

func decodeStats(state *models.AppState, wire wireSnapshot, mode DecodeMode) error {
	if wire.GlobalBaseStats == nil {
		// the first browser revision kept one free-form base DR value
		if wire.Global != nil {
			if level := wire.Global.Int(0); level > 0 {
				state.GlobalBaseStats[models.StatOtherReduction] = models.DeriveGlobalStat(models.StatOtherReduction, level)
			}
		}
		return nil
	}

	keys := make([]string, 0, len(wire.GlobalBaseStats))
	for key := range wire.GlobalBaseStats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := models.LookupGlobalStat(key); !ok {
			if mode == Strict {
				return errors.Wrapf(ErrMalformedSnapshot, "unknown global stat %q", key)
			}
			continue
		}
		state.GlobalBaseStats[key] = models.DeriveGlobalStat(key, wire.GlobalBaseStats[key].Level.Int(0))
	}
	return nil
}

func decodeSquad(idx int, raw json.RawMessage, mode DecodeMode) (models.Squad, error) {
	squad := models.NewSquad(idx)
	if isNull(raw) {
		return squad, nil
	}

	var ws wireSquad
	if err := json.Unmarshal(raw, &ws); err != nil {
		if mode == Strict {
			return squad, errors.Wrapf(ErrMalformedSnapshot, "parse: %v", err)
		}
		return squad, nil
	}
	if ws.Name != "" {
		squad.Name = ws.Name
	}

	slots, err := decodeIndexed(ws.Slots, models.SlotsPerSquad, false, mode)
	if err != nil {
		return squad, errors.Wrap(err, "slots")
	}
	for pos, rawSlot := range slots {
		slot, err := decodeSlot(rawSlot, mode)
		if err != nil {
			return squad, errors.Wrapf(err, "slot %d", pos)
		}
		squad.Slots[pos] = slot
	}
	return squad, nil
}

func decodeSlot(raw json.RawMessage, mode DecodeMode) (models.SlotData, error) {
	if isNull(raw) {
		return models.EmptySlot(), nil
	}
	var ws wireSlot
	if err := json.Unmarshal(raw, &ws); err != nil {
		if mode == Strict {
			return models.SlotData{}, errors.Wrapf(ErrMalformedSnapshot, "parse: %v", err)
		}
		return models.EmptySlot(), nil
	}
	if ws.ID == nil || *ws.ID == "" {
		return models.EmptySlot(), nil
	}
	return models.SlotData{
		HeroID:     *ws.ID,
		Name:       ws.Name,
		Category:   models.Category(ws.Cat),
		HeroLevels: ws.toLevels(),
	}, nil
}

// toLevels floors levels at their minimums. The browser tool stores ex_lvl 0
// for heroes whose weapon was never entered.
func (w *wireLevels) toLevels() models.HeroLevels {
	levels := models.DefaultHeroLevels()
	if w.ExLvl != nil {
		levels.ExWeaponLevel = max(models.MinExWeaponLevel, w.ExLvl.Int(models.MinExWeaponLevel))
	}
	if w.Stars != nil {
		levels.Stars = max(0, w.Stars.Int(0))
	}
	if w.Skills != nil {
		levels.Skills.Tactics = max(models.MinSkillLevel, w.Skills.Tactics.Int(models.MinSkillLevel))
		levels.Skills.Passive = max(models.MinSkillLevel, w.Skills.Passive.Int(models.MinSkillLevel))
	}
	return levels
}

// decodeIndexed accepts a JSON array or an object keyed by index and returns
// the entries by position. Object keys are 0-based; with numbered set, keys
// are read as 1..size when no "0" key exists, which is the old squad numbering.
func decodeIndexed(raw json.RawMessage, size int, numbered bool, mode DecodeMode) (map[int]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrapf(ErrMalformedSnapshot, "parse: %v", err)
		}
		if len(items) > size && mode == Strict {
			return nil, errors.Wrapf(ErrMalformedSnapshot, "%d entries, at most %d allowed", len(items), size)
		}
		out := make(map[int]json.RawMessage, len(items))
		for i, item := range items {
			if i >= size {
				break
			}
			out[i] = item
		}
		return out, nil

	case '{':
		var items map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrapf(ErrMalformedSnapshot, "parse: %v", err)
		}
		return indexObject(items, size, numbered, mode)
	}

	if mode == Strict {
		return nil, errors.Wrap(ErrMalformedSnapshot, "expected an array or an object")
	}
	return nil, nil
}

func indexObject(items map[string]json.RawMessage, size int, numbered bool, mode DecodeMode) (map[int]json.RawMessage, error) {
	keyed := make(map[int]json.RawMessage, len(items))
	oneBased := numbered && len(items) > 0
	for key, item := range items {
		n, err := strconv.Atoi(key)
		if err != nil {
			if mode == Strict {
				return nil, errors.Wrapf(ErrMalformedSnapshot, "non-numeric key %q", key)
			}
			continue
		}
		if n == 0 || n > size {
			oneBased = false
		}
		keyed[n] = item
	}

	out := make(map[int]json.RawMessage, len(keyed))
	for n, item := range keyed {
		pos := n
		if oneBased {
			pos = n - 1
		}
		if pos < 0 || pos >= size {
			if mode == Strict {
				return nil, errors.Wrapf(ErrMalformedSnapshot, "index %d out of range", n)
			}
			continue
		}
		out[pos] = item
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Sanitize forces a decoded state back inside the planner invariants:
// indexes and levels are clamped, derived stats recomputed, and a hero found
// in more than one slot keeps only its first position.
func Sanitize(state *models.AppState) {
	if state.CurrentSquadIdx < 0 || state.CurrentSquadIdx >= models.SquadCount {
		state.CurrentSquadIdx = 0
	}
	if state.GlobalBaseStats == nil {
		state.GlobalBaseStats = make(map[string]models.GlobalStat)
	}
	if state.HeroStats == nil {
		state.HeroStats = make(map[string]models.HeroLevels)
	}

	for key, stat := range state.GlobalBaseStats {
		if _, ok := models.LookupGlobalStat(key); !ok {
			delete(state.GlobalBaseStats, key)
			continue
		}
		state.GlobalBaseStats[key] = models.DeriveGlobalStat(key, max(stat.Level, 0))
	}
	for _, def := range models.GlobalStatDefinitions {
		if _, ok := state.GlobalBaseStats[def.Key]; !ok {
			state.GlobalBaseStats[def.Key] = models.DeriveGlobalStat(def.Key, 0)
		}
	}

	seen := make(map[string]bool)
	for sq := range state.Squads {
		for sl := range state.Squads[sq].Slots {
			slot := &state.Squads[sq].Slots[sl]
			if slot.IsEmpty() {
				*slot = models.EmptySlot()
				continue
			}
			if seen[slot.HeroID] {
				*slot = models.EmptySlot()
				continue
			}
			seen[slot.HeroID] = true
			slot.HeroLevels = clampLevels(slot.HeroLevels)
		}
	}

	for id, levels := range state.HeroStats {
		state.HeroStats[id] = clampLevels(levels)
	}
}

func clampLevels(l models.HeroLevels) models.HeroLevels {
	l.ExWeaponLevel = max(models.MinExWeaponLevel, min(l.ExWeaponLevel, models.MaxExWeaponLevel))
	l.Stars = max(l.Stars, 0)
	limit := models.SkillCap(l.ExWeaponLevel)
	l.Skills.Tactics = max(models.MinSkillLevel, min(l.Skills.Tactics, limit))
	l.Skills.Passive = max(models.MinSkillLevel, min(l.Skills.Passive, limit))
	return l
}

// describe summarises a state for log output.
func describe(state *models.AppState) string {
	occupied := len(state.AssignedHeroIDs())
	return fmt.Sprintf("squad=%d heroes=%d archived=%d", state.CurrentSquadIdx, occupied, len(state.HeroStats))
}
