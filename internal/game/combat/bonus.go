package combat

import "github.com/AzhaqCom/theone/internal/game/character"

// AbilityModifier returns the standard modifier for an ability score:
// floor((score - 10) / 2).
func AbilityModifier(score int) int {
	return character.Modifier(score)
}

// governingStat picks the ability that governs an attack: the explicit stat
// when set, dexterity for ranged attacks, strength otherwise.
func governingStat(attack character.Attack) character.Ability {
	if attack.Stat != "" {
		return attack.Stat
	}
	if attack.IsRanged() {
		return character.Dexterity
	}
	return character.Strength
}

// AttackBonus computes the total attack roll bonus for attacker using attack.
//
// A fixed attack.Bonus is returned verbatim (the enemy-template shortcut).
// Otherwise the bonus is proficiency (ceil(level/4)+1, baseline 2) plus the
// governing ability's modifier.
//
// Postcondition: On missing or out-of-range stat data the proficiency-only
// fallback is returned together with a recoverable DataError; the returned
// bonus is always usable.
func AttackBonus(attacker *Combatant, attack character.Attack) (int, error) {
	if attack.Bonus != nil {
		return *attack.Bonus, nil
	}

	prof := character.ProficiencyBonus(attacker.Level)
	stat := governingStat(attack)
	score, ok := attacker.Abilities.Score(stat)
	if !ok || score <= 0 {
		return prof, NewDataError(MissingStat,
			"%s has no usable %s score for attack %q", attacker.Name, stat, attack.Name)
	}
	return prof + AbilityModifier(score), nil
}

// SpellAttackBonus computes the spell attack roll bonus for caster:
// proficiency plus the spellcasting ability's modifier.
//
// Postcondition: Falls back to proficiency alone, with a recoverable
// DataError, when the caster has no spellcasting block or the governing
// score is missing.
func SpellAttackBonus(caster *Combatant) (int, error) {
	prof := character.ProficiencyBonus(caster.Level)
	if caster.Spellcasting == nil {
		return prof, NewDataError(MissingSpellcasting,
			"%s has no spellcasting block", caster.Name)
	}
	score, ok := caster.Abilities.Score(caster.Spellcasting.Ability)
	if !ok || score <= 0 {
		return prof, NewDataError(MissingStat,
			"%s has no usable %s score for spellcasting", caster.Name, caster.Spellcasting.Ability)
	}
	return prof + AbilityModifier(score), nil
}
