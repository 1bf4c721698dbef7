// Package effect tracks applied combat effects (protection, taunts) on
// combatants for the duration of an encounter.
package effect

import "fmt"

// Kind identifies an applied effect.
type Kind string

// Supported effect kinds.
const (
	// Protect grants the target an armor class bonus while active.
	Protect Kind = "protect"
	// Taunt forces enemies to prefer the taunting combatant as a target.
	Taunt Kind = "taunt"
)

// protectACBonus is the flat AC bonus granted per protect application.
const protectACBonus = 2

// Active tracks one applied effect on a combatant.
type Active struct {
	Kind Kind
	// SourceID is the combatant that applied the effect.
	SourceID string
	// RoundsRemaining counts down each Tick; -1 means the effect lasts
	// until the encounter ends.
	RoundsRemaining int
}

// Set tracks all effects currently applied to one combatant.
// It is not safe for concurrent use; the orchestrator serialises access.
type Set struct {
	effects map[Kind]*Active
}

// NewSet creates an empty effect Set.
func NewSet() *Set {
	return &Set{effects: make(map[Kind]*Active)}
}

// Apply adds or refreshes an effect. Re-applying an active effect extends its
// duration to the longer of the two and updates the source.
//
// Precondition: kind must be a supported Kind.
// Postcondition: Has(kind) is true.
func (s *Set) Apply(kind Kind, sourceID string, rounds int) error {
	if kind != Protect && kind != Taunt {
		return fmt.Errorf("effect: unknown kind %q", kind)
	}
	if existing, ok := s.effects[kind]; ok {
		existing.SourceID = sourceID
		if rounds == -1 || (existing.RoundsRemaining != -1 && rounds > existing.RoundsRemaining) {
			existing.RoundsRemaining = rounds
		}
		return nil
	}
	s.effects[kind] = &Active{Kind: kind, SourceID: sourceID, RoundsRemaining: rounds}
	return nil
}

// Has reports whether the given effect kind is active.
func (s *Set) Has(kind Kind) bool {
	_, ok := s.effects[kind]
	return ok
}

// Source returns the source combatant id of an active effect, or "" when absent.
func (s *Set) Source(kind Kind) string {
	if a, ok := s.effects[kind]; ok {
		return a.SourceID
	}
	return ""
}

// Remove deletes the effect of the given kind. No-op when absent.
//
// Postcondition: Has(kind) is false.
func (s *Set) Remove(kind Kind) {
	delete(s.effects, kind)
}

// Tick decrements RoundsRemaining on every timed effect, removing those that
// expire. Permanent effects (RoundsRemaining == -1) are untouched.
//
// Postcondition: For every kind in the returned slice, Has(kind) is false.
func (s *Set) Tick() []Kind {
	var expired []Kind
	for kind, a := range s.effects {
		if a.RoundsRemaining < 0 {
			continue
		}
		a.RoundsRemaining--
		if a.RoundsRemaining <= 0 {
			expired = append(expired, kind)
			delete(s.effects, kind)
		}
	}
	return expired
}

// ACBonus returns the net armor class bonus from active effects.
//
// Postcondition: Returns >= 0.
func ACBonus(s *Set) int {
	if s == nil {
		return 0
	}
	if s.Has(Protect) {
		return protectACBonus
	}
	return 0
}

// TauntSource scans the per-combatant sets and returns the id of a living
// taunting combatant that enemies must prefer as a target, or "" when none.
// alive reports whether a combatant id is still standing.
func TauntSource(sets map[string]*Set, alive func(id string) bool) string {
	for id, s := range sets {
		if s != nil && s.Has(Taunt) && alive(id) {
			return id
		}
	}
	return ""
}
