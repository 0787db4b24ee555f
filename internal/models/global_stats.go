package models

// Global stat keys, spelled as in the browser tool's snapshot.
const (
	StatAdvancedProtection1 = "sf_advanced_protection_1"
	StatAdvancedProtection2 = "sf_advanced_protection_2"
	StatDroneLevel          = "drone_lvl"
	StatQuantumChipAircraft = "drone_quantum_chip_ac_lvl"
	StatMemoryChipAircraft  = "drone_memory_chip_ac_lvl"
	StatQuantumChipMissile  = "drone_quantum_chip_missile_lvl"
	StatMemoryChipMissile   = "drone_memory_chip_missile_lvl"
	StatQuantumChipTank     = "drone_quantum_chip_tank_lvl"
	StatMemoryChipTank      = "drone_memory_chip_tank_lvl"
	StatOtherReduction      = "other_red"
)

const (
	advancedProtectionPerLevel = 1.5
	droneThresholdLevel        = 200
	droneThresholdReduction    = 5.0
)

type statFormula int

const (
	formulaLinearProtection statFormula = iota
	formulaDroneThreshold
	formulaChip
	formulaPassThrough
)

// GlobalStatDefinition describes a global bonus source. Category is set for
// chip stats, which only apply to heroes of that category.
type GlobalStatDefinition struct {
	Key         string
	Description string
	Category    Category
	formula     statFormula
}

// GlobalStatDefinitions lists every known global stat in display order.
var GlobalStatDefinitions = []GlobalStatDefinition{
	{Key: StatAdvancedProtection1, Description: "Advanced Protection Node 1: Special Forces technology", formula: formulaLinearProtection},
	{Key: StatAdvancedProtection2, Description: "Advanced Protection Node 2: Special Forces technology", formula: formulaLinearProtection},
	{Key: StatDroneLevel, Description: "Current level of your drone", formula: formulaDroneThreshold},
	{Key: StatQuantumChipAircraft, Description: "Quantum Chip for Aircraft heroes (middle chip)", Category: CategoryAircraft, formula: formulaChip},
	{Key: StatMemoryChipAircraft, Description: "Memory Fission Chip for Aircraft heroes (left chip)", Category: CategoryAircraft, formula: formulaChip},
	{Key: StatQuantumChipMissile, Description: "Quantum Chip for Missile heroes (middle chip)", Category: CategoryMissile, formula: formulaChip},
	{Key: StatMemoryChipMissile, Description: "Memory Fission Chip for Missile heroes (left chip)", Category: CategoryMissile, formula: formulaChip},
	{Key: StatQuantumChipTank, Description: "Quantum Chip for Tank heroes (middle chip)", Category: CategoryTank, formula: formulaChip},
	{Key: StatMemoryChipTank, Description: "Memory Fission Chip for Tank heroes (left chip)", Category: CategoryTank, formula: formulaChip},
	{Key: StatOtherReduction, Description: "% of all other damage reduction without an input field here", formula: formulaPassThrough},
}

var globalStatIndex = func() map[string]GlobalStatDefinition {
	idx := make(map[string]GlobalStatDefinition, len(GlobalStatDefinitions))
	for _, def := range GlobalStatDefinitions {
		idx[def.Key] = def
	}
	return idx
}()

// LookupGlobalStat returns the definition for key.
func LookupGlobalStat(key string) (GlobalStatDefinition, bool) {
	def, ok := globalStatIndex[key]
	return def, ok
}

// AppliesTo reports whether the stat counts for a hero of category cat.
// Non-chip stats apply to every slot, including empty ones.
func (d GlobalStatDefinition) AppliesTo(cat Category) bool {
	return d.Category == "" || d.Category == cat
}

// Reduction returns the physical and energy DR granted at level.
func (d GlobalStatDefinition) Reduction(level int) (physical, energy float64) {
	switch d.formula {
	case formulaLinearProtection:
		v := advancedProtectionPerLevel * float64(level)
		return v, v
	case formulaDroneThreshold:
		if level >= droneThresholdLevel {
			return droneThresholdReduction, droneThresholdReduction
		}
		return 0, 0
	case formulaChip:
		// chip values are not modelled yet; the level is tracked for display
		return 0, 0
	case formulaPassThrough:
		return float64(level), float64(level)
	}
	return 0, 0
}

// DeriveGlobalStat builds the stat entry for key at level with its derived reductions.
// Unknown keys yield zero reductions.
func DeriveGlobalStat(key string, level int) GlobalStat {
	def, ok := LookupGlobalStat(key)
	if !ok {
		return GlobalStat{Level: level}
	}
	phys, ener := def.Reduction(level)
	return GlobalStat{
		Level:             level,
		PhysicalReduction: phys,
		EnergyReduction:   ener,
		Description:       def.Description,
	}
}
