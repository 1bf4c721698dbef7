package combat

import (
	"fmt"

	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/dice"
)

// AttackResult holds the outcome of a single attack roll.
type AttackResult struct {
	AttackerID string
	TargetID   string
	// AttackRoll is the raw d20 result before modifiers.
	AttackRoll int
	// AttackTotal is the full attack roll: d20 + attack bonus.
	AttackTotal int
	// Critical is true on a natural 20, which always hits.
	Critical bool
	Hit      bool
	// Damage is the final damage: the rolled total, doubled on a critical.
	Damage int
	// Message narrates the outcome.
	Message Message
	// DataErr carries a recoverable data error encountered during
	// resolution (missing stat, bad damage descriptor); resolution
	// proceeded with the documented fallback.
	DataErr error
}

// ResolveAttack performs a full attack roll for attacker against target.
//
// A natural 20 is a critical hit: it hits regardless of armor class and the
// rolled damage total is computed once, then doubled. Any other roll hits
// when d20 + attack bonus meets or exceeds the target's armor class.
//
// Precondition: attacker, target, and src must be non-nil.
// Postcondition: Returns a fully populated AttackResult; Damage == 0 on a miss.
func ResolveAttack(attacker *Combatant, attack character.Attack, target *Combatant, src dice.Source) AttackResult {
	return resolveAttackVsAC(attacker, attack, target, target.ArmorClass, src)
}

func resolveAttackVsAC(attacker *Combatant, attack character.Attack, target *Combatant, effectiveAC int, src dice.Source) AttackResult {
	r := AttackResult{AttackerID: attacker.ID, TargetID: target.ID}

	bonus, err := AttackBonus(attacker, attack)
	if err != nil {
		r.DataErr = err
	}

	r.AttackRoll = dice.D20(src)
	r.AttackTotal = r.AttackRoll + bonus
	r.Critical = r.AttackRoll == 20
	r.Hit = r.Critical || r.AttackTotal >= effectiveAC

	if !r.Hit {
		r.Message = Message{
			Category: CategoryMiss,
			Text: fmt.Sprintf("%s attacks %s with %s but misses (%d vs AC %d).",
				attacker.Name, target.Name, attack.Name, r.AttackTotal, effectiveAC),
		}
		return r
	}

	roll, err := dice.RollExpr(attack.Damage, src)
	if err != nil {
		r.DataErr = NewDataError(BadDamageDescriptor,
			"attack %q of %s: %v", attack.Name, attacker.Name, err)
	}
	r.Damage = roll.Total()
	if r.Critical {
		r.Damage *= 2
		r.Message = Message{
			Category: CategoryCritical,
			Text: fmt.Sprintf("Critical hit! %s strikes %s with %s for %d damage.",
				attacker.Name, target.Name, attack.Name, r.Damage),
		}
		return r
	}
	r.Message = Message{
		Category: CategoryHit,
		Text: fmt.Sprintf("%s hits %s with %s for %d damage (%d vs AC %d).",
			attacker.Name, target.Name, attack.Name, r.Damage, r.AttackTotal, effectiveAC),
	}
	return r
}

// ResolveSpellAttack resolves a spell cast by caster against target.
//
// Healing spells produce a healing intent and never roll to hit. Damaging
// spells with RequiresAttackRoll use the same d20 mechanic as weapon attacks
// with the spell attack bonus; auto-hit spells skip the roll entirely and
// always apply dice + bonus. acBonus adjusts the target's effective armor
// class for active effects, exactly as for weapon attacks; it is ignored for
// healing and auto-hit spells.
//
// Precondition: caster, target, and src must be non-nil.
// Postcondition: Returns an ActionResult of intents; no combatant is mutated.
func ResolveSpellAttack(caster *Combatant, spell character.Spell, target *Combatant, acBonus int, src dice.Source) ActionResult {
	var result ActionResult

	if spell.Healing != "" {
		roll, err := dice.RollExpr(spell.Healing, src)
		if err != nil {
			result.say(CategoryError, fmt.Sprintf("%s fumbles the casting of %s.", caster.Name, spell.Name))
			return result
		}
		amount := roll.Total() + spell.Bonus
		result.Success = true
		result.Healing = append(result.Healing, HealingEntry{TargetID: target.ID, Amount: amount})
		result.say(CategoryHealing, fmt.Sprintf("%s casts %s on %s, restoring %d HP.",
			caster.Name, spell.Name, target.Name, amount))
		return result
	}

	if spell.RequiresAttackRoll {
		bonus, _ := SpellAttackBonus(caster)
		effectiveAC := target.ArmorClass + acBonus
		roll := dice.D20(src)
		total := roll + bonus
		critical := roll == 20
		if !critical && total < effectiveAC {
			result.Success = true
			result.say(CategoryMiss, fmt.Sprintf("%s's %s misses %s (%d vs AC %d).",
				caster.Name, spell.Name, target.Name, total, effectiveAC))
			return result
		}
		damageRoll, err := dice.RollExpr(spell.Damage, src)
		if err != nil {
			result.say(CategoryError, fmt.Sprintf("%s's %s fizzles.", caster.Name, spell.Name))
			return result
		}
		damage := damageRoll.Total() + spell.Bonus
		if critical {
			damage *= 2
		}
		result.Success = true
		result.Damage = append(result.Damage, DamageEntry{TargetID: target.ID, Amount: damage})
		category := CategorySpellHit
		text := fmt.Sprintf("%s's %s hits %s for %d damage.", caster.Name, spell.Name, target.Name, damage)
		if critical {
			category = CategoryCritical
			text = fmt.Sprintf("Critical! %s's %s sears %s for %d damage.", caster.Name, spell.Name, target.Name, damage)
		}
		result.say(category, text)
		return result
	}

	// Auto-hit spell: no roll consumed.
	damageRoll, err := dice.RollExpr(spell.Damage, src)
	if err != nil {
		result.say(CategoryError, fmt.Sprintf("%s's %s fizzles.", caster.Name, spell.Name))
		return result
	}
	damage := damageRoll.Total() + spell.Bonus
	result.Success = true
	result.Damage = append(result.Damage, DamageEntry{TargetID: target.ID, Amount: damage})
	result.say(CategorySpell, fmt.Sprintf("%s casts %s, striking %s for %d damage.",
		caster.Name, spell.Name, target.Name, damage))
	return result
}

// ResolveEntityAttack is the guarded attack resolution used for enemy and
// companion turns. It refuses to attack an already-fallen target (no roll is
// consumed, preventing duplicate death narration) and degrades bad data to a
// safe failure instead of corrupting the action result.
//
// acBonus adjusts the target's effective armor class for active effects.
//
// Precondition: attacker and src must be non-nil.
// Postcondition: Returns an ActionResult of intents; Success is false when
// the attack could not legally be attempted.
func ResolveEntityAttack(attacker *Combatant, attack character.Attack, target *Combatant, acBonus int, src dice.Source) ActionResult {
	var result ActionResult

	if target == nil || target.IsDefeated() {
		name := "their target"
		if target != nil {
			name = target.Name
		}
		result.say(CategoryInfo, fmt.Sprintf("%s checks their swing: %s has already fallen.",
			attacker.Name, name))
		return result
	}
	if target.ArmorClass <= 0 {
		result.say(CategoryError, fmt.Sprintf("%s cannot be attacked: invalid armor class %d.",
			target.Name, target.ArmorClass))
		return result
	}

	r := resolveAttackVsAC(attacker, attack, target, target.ArmorClass+acBonus, src)
	result.Success = true
	result.DataErr = r.DataErr
	result.Messages = append(result.Messages, r.Message)
	if r.Hit && r.Damage > 0 {
		result.Damage = append(result.Damage, DamageEntry{TargetID: target.ID, Amount: r.Damage})
	}
	return result
}
