package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RawValue carries a user-typed level. It accepts a JSON number or string and
// keeps the text so the service can apply parse-with-fallback.
type RawValue string

func (r *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawValue(s)
		return nil
	}
	*r = RawValue(data)
	return nil
}

// Int parses the leading integer like a lenient form field: "12abc" is 12,
// "7.9" is 7, anything without leading digits falls back.
func (r RawValue) Int(fallback int) int {
	s := strings.TrimSpace(string(r))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return fallback
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return fallback
	}
	return n
}

// SetValueRequest is the body of PUT /stats/{key} and PUT /slots/{slot}/skills/{skill}
type SetValueRequest struct {
	Value RawValue `json:"value"`
}

// SwitchSquadRequest is the body of PUT /squads/current
type SwitchSquadRequest struct {
	Index *int `json:"index" validate:"required,min=0,max=2"`
}

// AssignHeroRequest is the body of POST /squads/{squad}/slots/{slot}/hero
type AssignHeroRequest struct {
	HeroID string `json:"hero_id" validate:"required,max=64"`
}

// ConfirmMoveRequest is the body of POST /moves/{id}/confirm
type ConfirmMoveRequest struct {
	DontAskAgain bool `json:"dont_ask_again"`
}

// UpdateSlotRequest is the body of PATCH /slots/{slot}; absent fields are left alone.
type UpdateSlotRequest struct {
	ExWeaponLevel *RawValue `json:"ex_weapon_level,omitempty"`
	Stars         *RawValue `json:"stars,omitempty"`
}

// SlotUpdate is the parsed partial update applied by the store.
type SlotUpdate struct {
	ExWeaponLevel *int
	Stars         *int
}

// ToUpdate parses the raw fields. A bad weapon level falls back to the floor, bad stars to 0.
func (r UpdateSlotRequest) ToUpdate() SlotUpdate {
	var u SlotUpdate
	if r.ExWeaponLevel != nil {
		v := r.ExWeaponLevel.Int(MinExWeaponLevel)
		u.ExWeaponLevel = &v
	}
	if r.Stars != nil {
		v := r.Stars.Int(0)
		u.Stars = &v
	}
	return u
}

type AssignStatus string

const (
	AssignStatusAssigned             AssignStatus = "assigned"
	AssignStatusUnchanged            AssignStatus = "unchanged"
	AssignStatusIgnored              AssignStatus = "ignored"
	AssignStatusConfirmationRequired AssignStatus = "confirmation_required"
)

// PendingMove is a move waiting for the user's answer.
type PendingMove struct {
	ID      uuid.UUID `json:"id"`
	HeroID  string    `json:"hero_id"`
	From    SlotRef   `json:"from"`
	To      SlotRef   `json:"to"`
	Message string    `json:"message"`
}

// AssignResult reports what an assignment request did.
type AssignResult struct {
	Status  AssignStatus `json:"status"`
	Pending *PendingMove `json:"pending_move,omitempty"`
}

// StateResponse is the full view returned by GET /state
type StateResponse struct {
	State     *AppState  `json:"state"`
	SquadDR   []SlotDR   `json:"squad_dr"`
	Meta      MetaStatus `json:"meta"`
	SkipMoves bool       `json:"skip_move_confirmation"`
}

// GlobalStatResponse is returned by the stats endpoints
type GlobalStatResponse struct {
	Key string `json:"key"`
	GlobalStat
}

type SquadDRResponse struct {
	SquadIdx int      `json:"squad_idx"`
	Slots    []SlotDR `json:"slots"`
}

type HeroListResponse struct {
	Heroes []RosterEntry `json:"heroes"`
	Total  int           `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Error codes returned in ErrorResponse.Error
const (
	ErrorCodeBadRequest      = "bad_request"
	ErrorCodeValidation      = "validation_error"
	ErrorCodeInvalidSnapshot = "invalid_snapshot"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeInternalError   = "internal_error"
)
