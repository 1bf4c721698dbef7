// Package character defines the persistent character domain model shared by
// the combat engine and the character store.
package character

import "time"

// Ability names one of the six core ability scores.
type Ability string

// The six core abilities.
const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// Abilities lists all six abilities in canonical order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// AbilityScores holds the six core ability score values for a character.
// Valid scores are in [1, 30]; the zero value indicates missing data.
type AbilityScores struct {
	Strength     int `yaml:"strength" json:"strength"`
	Dexterity    int `yaml:"dexterity" json:"dexterity"`
	Constitution int `yaml:"constitution" json:"constitution"`
	Intelligence int `yaml:"intelligence" json:"intelligence"`
	Wisdom       int `yaml:"wisdom" json:"wisdom"`
	Charisma     int `yaml:"charisma" json:"charisma"`
}

// Score returns the value for the named ability.
//
// Postcondition: Returns (value, true) for a known ability name, (0, false) otherwise.
func (a AbilityScores) Score(name Ability) (int, bool) {
	switch name {
	case Strength:
		return a.Strength, true
	case Dexterity:
		return a.Dexterity, true
	case Constitution:
		return a.Constitution, true
	case Intelligence:
		return a.Intelligence, true
	case Wisdom:
		return a.Wisdom, true
	case Charisma:
		return a.Charisma, true
	default:
		return 0, false
	}
}

// Modifier computes the standard ability modifier using floor division:
// floor((score - 10) / 2).
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// RangeCategory classifies an attack's reach.
type RangeCategory string

// Attack range categories.
const (
	Melee  RangeCategory = "melee"
	Ranged RangeCategory = "ranged"
)

// Attack is one attack definition carried by a character or enemy template.
type Attack struct {
	// Name is the display name, e.g. "Longsword".
	Name string `yaml:"name" json:"name"`
	// Damage is the damage descriptor in "NdM" or "NdM+B" form.
	Damage string `yaml:"damage" json:"damage"`
	// Bonus, when non-nil, is a fixed attack bonus that bypasses the
	// stat-derived computation. Enemy templates typically hardcode this.
	Bonus *int `yaml:"bonus" json:"bonus,omitempty"`
	// DamageType is informational, e.g. "slashing"; may be empty.
	DamageType string `yaml:"damage_type" json:"damage_type,omitempty"`
	// Range categorises the attack as melee or ranged.
	Range RangeCategory `yaml:"range" json:"range,omitempty"`
	// Stat, when non-empty, names the governing ability explicitly.
	Stat Ability `yaml:"stat" json:"stat,omitempty"`
}

// IsRanged reports whether the attack uses the ranged category.
func (a Attack) IsRanged() bool { return a.Range == Ranged }

// Sheet represents a player or companion character's persistent state.
//
// ID is assigned by the persistence layer; zero indicates an unsaved sheet.
type Sheet struct {
	ID   int64
	Name string

	Level      int
	MaxHP      int
	CurrentHP  int
	ArmorClass int

	Abilities    AbilityScores
	Attacks      []Attack
	Spellcasting *Spellcasting

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProficiencyBonus returns the level-derived flat bonus: ceil(level/4) + 1.
// A missing level (<= 0) yields the baseline bonus of 2.
//
// Postcondition: Returns >= 2.
func ProficiencyBonus(level int) int {
	if level <= 0 {
		return 2
	}
	return (level+3)/4 + 1
}
