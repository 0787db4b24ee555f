package models

// DR tier thresholds used by the UI for colouring.
const (
	TierDangerThreshold  = 85.0
	TierWarningThreshold = 70.0
)

type DRTier string

const (
	TierDanger  DRTier = "danger"
	TierWarning DRTier = "warning"
	TierBase    DRTier = "base"
)

// TierFor buckets a DR percentage.
func TierFor(value float64) DRTier {
	switch {
	case value >= TierDangerThreshold:
		return TierDanger
	case value >= TierWarningThreshold:
		return TierWarning
	}
	return TierBase
}

// SlotDR is the computed damage reduction of one squad position. Values are not capped.
type SlotDR struct {
	Slot         int     `json:"slot"`
	Physical     float64 `json:"physical"`
	Energy       float64 `json:"energy"`
	PhysicalTier DRTier  `json:"physical_tier"`
	EnergyTier   DRTier  `json:"energy_tier"`
}

type MetaType string

const (
	MetaNone        MetaType = ""
	MetaAir41       MetaType = "air-4plus1"
	MetaTank41      MetaType = "tank-4plus1"
	MetaMissile41   MetaType = "missile-4plus1"
	MetaFullTank    MetaType = "full-tank"
	MetaFullMissile MetaType = "full-missile"
)

// MetaStatus classifies the current squad. Unlocked reveals the hidden roster hero.
type MetaStatus struct {
	MetaType MetaType `json:"meta_type"`
	Unlocked bool     `json:"unlocked"`
}
