package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidSnapshot indicates that an imported state breaks a planner invariant
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidRequest indicates that a request body failed validation
	ErrInvalidRequest = errors.New("invalid request")
)

// validate is the validator instance
var validate = validator.New()

// ValidateRequest runs struct tag validation on a request DTO.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}

// ValidateAppState checks an imported state against the planner invariants:
// field ranges, the skill cap, known global stat keys and single occupancy.
func ValidateAppState(state *AppState) error {
	if state == nil {
		return fmt.Errorf("%w: state is empty", ErrInvalidSnapshot)
	}

	if err := validate.Struct(state); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, err.Error())
	}

	for key := range state.GlobalBaseStats {
		if _, ok := LookupGlobalStat(key); !ok {
			return fmt.Errorf("%w: unknown global stat %q", ErrInvalidSnapshot, key)
		}
	}

	seen := make(map[string]SlotRef)
	for sq := range state.Squads {
		for sl, slot := range state.Squads[sq].Slots {
			if err := validateLevels(slot.HeroLevels); err != nil {
				return fmt.Errorf("%w: squad %d slot %d: %s", ErrInvalidSnapshot, sq, sl, err.Error())
			}
			if slot.IsEmpty() {
				continue
			}
			if prev, dup := seen[slot.HeroID]; dup {
				return fmt.Errorf("%w: hero %q occupies squad %d slot %d and squad %d slot %d",
					ErrInvalidSnapshot, slot.HeroID, prev.Squad, prev.Slot, sq, sl)
			}
			seen[slot.HeroID] = SlotRef{Squad: sq, Slot: sl}
		}
	}

	for heroID, levels := range state.HeroStats {
		if err := validateLevels(levels); err != nil {
			return fmt.Errorf("%w: hero stats %q: %s", ErrInvalidSnapshot, heroID, err.Error())
		}
	}

	return nil
}

func validateLevels(l HeroLevels) error {
	limit := SkillCap(l.ExWeaponLevel)
	if l.Skills.Tactics > limit || l.Skills.Passive > limit {
		return fmt.Errorf("skill level above cap %d for exclusive weapon level %d", limit, l.ExWeaponLevel)
	}
	return nil
}
