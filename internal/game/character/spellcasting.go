package character

import "fmt"

// ErrNoSlot is returned when consuming a spell slot that is exhausted or absent.
var ErrNoSlot = fmt.Errorf("character: no spell slot remaining")

// Spell describes a castable spell as the combat engine sees it.
type Spell struct {
	// Name is the spell's display name and registry key.
	Name string `yaml:"name"`
	// Level is the slot level required; 0 marks a cantrip.
	Level int `yaml:"level"`
	// Damage is the damage descriptor; empty for non-damaging spells.
	Damage string `yaml:"damage"`
	// Bonus is a flat amount added after the damage roll.
	Bonus int `yaml:"bonus"`
	// Healing is the healing descriptor; empty for non-healing spells.
	Healing string `yaml:"healing"`
	// RequiresAttackRoll is true for spells resolved with a d20 attack roll;
	// false means the spell hits automatically.
	RequiresAttackRoll bool `yaml:"requires_attack_roll"`
	// RangeTiles is the casting range in battlefield tiles.
	RangeTiles int `yaml:"range_tiles"`
}

// Spellcasting holds a caster's spell bookkeeping.
//
// Invariant: Prepared ⊆ Known; len(Prepared) <= Modifier(ability) + level.
type Spellcasting struct {
	// Ability is the governing spellcasting ability.
	Ability Ability `json:"ability"`
	// Slots maps spell-slot level to remaining count.
	Slots map[int]int `json:"slots"`
	// Known is the set of known spell names.
	Known map[string]bool `json:"known"`
	// Prepared is the set of prepared spell names; must be a subset of Known.
	Prepared map[string]bool `json:"prepared"`
	// Cantrips is the set of cantrip names; cantrips never consume slots.
	Cantrips map[string]bool `json:"cantrips"`
}

// Validate checks the spellcasting invariants against the owner's level and
// governing ability score.
//
// Postcondition: Returns nil iff Prepared ⊆ Known and
// len(Prepared) <= Modifier(abilityScore) + level.
func (s *Spellcasting) Validate(abilityScore, level int) error {
	for name := range s.Prepared {
		if !s.Known[name] {
			return fmt.Errorf("character: prepared spell %q is not known", name)
		}
	}
	maxPrepared := Modifier(abilityScore) + level
	if maxPrepared < 0 {
		maxPrepared = 0
	}
	if len(s.Prepared) > maxPrepared {
		return fmt.Errorf("character: %d spells prepared, maximum is %d", len(s.Prepared), maxPrepared)
	}
	return nil
}

// CanCast reports whether the named spell at the given slot level is castable:
// cantrips always are; levelled spells need the spell prepared and a slot
// remaining at its level.
func (s *Spellcasting) CanCast(name string, level int) bool {
	if s.Cantrips[name] {
		return true
	}
	return s.Prepared[name] && s.Slots[level] > 0
}

// ConsumeSlot decrements the remaining count for the given slot level.
// Cantrip casts (level 0) never consume a slot. The consumed state lives
// in memory until the store write-back checkpoint.
//
// Postcondition: On success the remaining count for level is decremented by 1
// and stays >= 0; ErrNoSlot is returned when no slot remains.
func (s *Spellcasting) ConsumeSlot(level int) error {
	if level == 0 {
		return nil
	}
	if s.Slots[level] <= 0 {
		return fmt.Errorf("%w at level %d", ErrNoSlot, level)
	}
	s.Slots[level]--
	return nil
}

// Clone returns a deep copy, so combat-time slot consumption never aliases
// the persistent record.
func (s *Spellcasting) Clone() *Spellcasting {
	if s == nil {
		return nil
	}
	out := &Spellcasting{
		Ability:  s.Ability,
		Slots:    make(map[int]int, len(s.Slots)),
		Known:    make(map[string]bool, len(s.Known)),
		Prepared: make(map[string]bool, len(s.Prepared)),
		Cantrips: make(map[string]bool, len(s.Cantrips)),
	}
	for k, v := range s.Slots {
		out.Slots[k] = v
	}
	for k, v := range s.Known {
		out.Known[k] = v
	}
	for k, v := range s.Prepared {
		out.Prepared[k] = v
	}
	for k, v := range s.Cantrips {
		out.Cantrips[k] = v
	}
	return out
}
