// Package companion implements the ally decision module: a pure priority
// ladder choosing the companion's action each turn, and a movement helper
// that respects an injected move validator.
package companion

import (
	"sort"

	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/combat"
	"github.com/AzhaqCom/theone/internal/game/effect"
	"github.com/AzhaqCom/theone/internal/game/grid"
)

// DefaultLowHPThreshold is the fraction of MaxHP below which an ally counts
// as hurt enough to heal.
const DefaultLowHPThreshold = 0.3

// Decider chooses the companion's action each turn. It holds no mutable
// state: every Decide call reads the combat state fresh, so decisions stay
// reproducible for a given state.
type Decider struct {
	// spells resolves spell names from the spellcasting block to definitions.
	spells map[string]character.Spell
	// lowHP is the heal-trigger fraction of MaxHP.
	lowHP float64
	// ladder is the ordered decision table; the first step that produces a
	// decision wins.
	ladder []step
}

// step is one rung of the decision ladder. ok is false when the step does
// not apply and the ladder should continue.
type step func(state *combat.State, c *combat.Combatant) (combat.Decision, bool)

// NewDecider creates a Decider with the given spell definitions.
//
// Precondition: lowHPThreshold in (0, 1]; zero selects DefaultLowHPThreshold.
func NewDecider(spells map[string]character.Spell, lowHPThreshold float64) *Decider {
	if lowHPThreshold <= 0 {
		lowHPThreshold = DefaultLowHPThreshold
	}
	d := &Decider{spells: spells, lowHP: lowHPThreshold}
	d.ladder = []step{d.healStep, d.spellStep, d.attackStep, d.supportStep}
	return d
}

// Decide walks the priority ladder: heal a hurt ally, cast an affordable
// spell, attack the nearest living enemy, fall back to support, else nothing.
//
// Precondition: state and c must not be nil.
// Postcondition: Always returns a usable Decision; the DecideNone fallback
// never errors.
func (d *Decider) Decide(state *combat.State, c *combat.Combatant) (combat.Decision, error) {
	for _, s := range d.ladder {
		if decision, ok := s(state, c); ok {
			return decision, nil
		}
	}
	return combat.Decision{Type: combat.DecideNone}, nil
}

// healStep heals the lowest-HP living ally below the threshold, when a
// castable healing spell exists.
func (d *Decider) healStep(state *combat.State, c *combat.Combatant) (combat.Decision, bool) {
	ally := d.lowestHurtAlly(state, c)
	if ally == nil {
		return combat.Decision{}, false
	}
	spell, ok := d.castableSpell(c, func(s character.Spell) bool { return s.Healing != "" })
	if !ok {
		return combat.Decision{}, false
	}
	return combat.Decision{
		Type:      combat.DecideHeal,
		Spell:     &spell,
		SpellSlot: spell.Level,
		TargetID:  ally.ID,
	}, true
}

// spellStep casts an affordable damaging spell at the nearest living enemy.
func (d *Decider) spellStep(state *combat.State, c *combat.Combatant) (combat.Decision, bool) {
	target := nearestLivingEnemy(state, c)
	if target == nil {
		return combat.Decision{}, false
	}
	spell, ok := d.castableSpell(c, func(s character.Spell) bool { return s.Damage != "" && s.Healing == "" })
	if !ok {
		return combat.Decision{}, false
	}
	return combat.Decision{
		Type:      combat.DecideSpell,
		Spell:     &spell,
		SpellSlot: spell.Level,
		TargetID:  target.ID,
	}, true
}

// attackStep swings at the nearest living enemy with a usable attack,
// preferring a ranged attack when the target is not adjacent.
func (d *Decider) attackStep(state *combat.State, c *combat.Combatant) (combat.Decision, bool) {
	if len(c.Attacks) == 0 {
		return combat.Decision{}, false
	}
	target := nearestLivingEnemy(state, c)
	if target == nil {
		return combat.Decision{}, false
	}

	attack := &c.Attacks[0]
	if distanceBetween(state, c.ID, target.ID) > 1 {
		for i := range c.Attacks {
			if c.Attacks[i].IsRanged() {
				attack = &c.Attacks[i]
				break
			}
		}
	}
	return combat.Decision{
		Type:     combat.DecideAttack,
		Attack:   attack,
		TargetID: target.ID,
	}, true
}

// supportStep protects the player when unprotected, taunts otherwise, and
// yields to the none fallback when both effects are already up.
func (d *Decider) supportStep(state *combat.State, c *combat.Combatant) (combat.Decision, bool) {
	if player := state.Player(); player != nil && !player.IsDefeated() &&
		!state.EffectsFor(player.ID).Has(effect.Protect) {
		return combat.Decision{Type: combat.DecideProtect, TargetID: player.ID}, true
	}
	if !state.EffectsFor(c.ID).Has(effect.Taunt) {
		return combat.Decision{Type: combat.DecideTaunt, TargetID: c.ID}, true
	}
	return combat.Decision{}, false
}

// castableSpell returns the first matching spell, by sorted name for
// deterministic choice, that the companion can afford to cast.
func (d *Decider) castableSpell(c *combat.Combatant, match func(character.Spell) bool) (character.Spell, bool) {
	sc := c.Spellcasting
	if sc == nil {
		return character.Spell{}, false
	}

	var names []string
	for name := range sc.Cantrips {
		names = append(names, name)
	}
	for name := range sc.Prepared {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spell, ok := d.spells[name]
		if !ok || !match(spell) {
			continue
		}
		if sc.CanCast(name, spell.Level) {
			return spell, true
		}
	}
	return character.Spell{}, false
}

// lowestHurtAlly returns the living ally with the lowest HP fraction below
// the threshold, or nil. Allies are the player and the companion itself.
func (d *Decider) lowestHurtAlly(state *combat.State, c *combat.Combatant) *combat.Combatant {
	var hurt *combat.Combatant
	for _, ally := range []*combat.Combatant{state.Player(), c} {
		if ally == nil || ally.IsDefeated() || ally.MaxHP <= 0 {
			continue
		}
		if float64(ally.CurrentHP) >= d.lowHP*float64(ally.MaxHP) {
			continue
		}
		if hurt == nil || ally.CurrentHP < hurt.CurrentHP {
			hurt = ally
		}
	}
	return hurt
}

// nearestLivingEnemy picks the closest living enemy by Chebyshev distance,
// keeping the first found on ties for stable targeting. Enemies without a
// battlefield position sort last.
func nearestLivingEnemy(state *combat.State, c *combat.Combatant) *combat.Combatant {
	var best *combat.Combatant
	bestDist := 0
	for _, e := range state.Enemies() {
		if e.IsDefeated() {
			continue
		}
		dist := distanceBetween(state, c.ID, e.ID)
		if best == nil || dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	return best
}

// distanceBetween returns the Chebyshev distance between two combatants, or
// a large sentinel when either has no recorded position.
func distanceBetween(state *combat.State, aID, bID string) int {
	a, okA := state.Position(aID)
	b, okB := state.Position(bID)
	if !okA || !okB {
		return int(^uint(0) >> 1)
	}
	return grid.Distance(a, b)
}
