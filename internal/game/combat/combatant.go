// Package combat implements the combat resolution engine: combatants, attack
// and spell resolution, the turn state machine, outcome evaluation, and the
// per-round orchestrator.
package combat

import (
	"github.com/AzhaqCom/theone/internal/game/character"
)

// Kind distinguishes the three combatant variants.
type Kind int

// Combatant variants.
const (
	KindPlayer Kind = iota
	KindCompanion
	KindEnemy
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindCompanion:
		return "companion"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Combatant represents one participant in an encounter. Instances are created
// at encounter start, mutated in place for HP and slot changes, and discarded
// when the encounter ends; persistent changes are written back to the
// character store at checkpoints only.
//
// Invariant: 0 <= CurrentHP <= MaxHP at all times.
type Combatant struct {
	// ID uniquely identifies this combatant within the encounter.
	ID   string
	Name string
	Kind Kind

	CurrentHP  int
	MaxHP      int
	ArmorClass int
	Level      int

	Abilities    character.AbilityScores
	Attacks      []character.Attack
	Spellcasting *character.Spellcasting

	// SheetID links player/companion combatants to their persistent sheet;
	// zero for enemies.
	SheetID int64
	// TemplateID records the bestiary template an enemy was spawned from;
	// empty for player and companion.
	TemplateID string
}

// IsDefeated reports whether the combatant is out of the fight.
// Defeated combatants are skipped in turn order but never removed from it.
func (c *Combatant) IsDefeated() bool { return c.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// ApplyHealing raises CurrentHP by amount, capping at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= MaxHP.
func (c *Combatant) ApplyHealing(amount int) {
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}

// FromSheet builds a live Combatant from a persistent character sheet.
// The spellcasting block is deep-copied so combat-time slot consumption never
// aliases the stored record.
//
// Precondition: sheet must not be nil; kind must be KindPlayer or KindCompanion.
func FromSheet(kind Kind, id string, sheet *character.Sheet) *Combatant {
	return &Combatant{
		ID:           id,
		Name:         sheet.Name,
		Kind:         kind,
		CurrentHP:    sheet.CurrentHP,
		MaxHP:        sheet.MaxHP,
		ArmorClass:   sheet.ArmorClass,
		Level:        sheet.Level,
		Abilities:    sheet.Abilities,
		Attacks:      append([]character.Attack(nil), sheet.Attacks...),
		Spellcasting: sheet.Spellcasting.Clone(),
		SheetID:      sheet.ID,
	}
}
