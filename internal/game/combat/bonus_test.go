package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzhaqCom/theone/internal/game/character"
)

func intPtr(v int) *int { return &v }

func TestAttackBonusFixedOverride(t *testing.T) {
	attacker := &Combatant{Name: "wolf", Level: 1}
	attack := character.Attack{Name: "bite", Bonus: intPtr(4)}

	bonus, err := AttackBonus(attacker, attack)
	require.NoError(t, err)
	assert.Equal(t, 4, bonus, "fixed attack bonus must be used verbatim, skipping derivation")
}

func TestAttackBonusDerivedFromStrength(t *testing.T) {
	attacker := &Combatant{
		Name:      "theron",
		Level:     5,
		Abilities: character.AbilityScores{Strength: 16, Dexterity: 12},
	}
	attack := character.Attack{Name: "longsword", Damage: "1d8+2", Range: character.Melee}

	bonus, err := AttackBonus(attacker, attack)
	require.NoError(t, err)
	// proficiency ceil(5/4)+1 = 3, STR 16 modifier +3
	assert.Equal(t, 6, bonus)
}

func TestAttackBonusRangedUsesDexterity(t *testing.T) {
	attacker := &Combatant{
		Name:      "scout",
		Level:     1,
		Abilities: character.AbilityScores{Strength: 8, Dexterity: 16},
	}
	attack := character.Attack{Name: "shortbow", Damage: "1d6", Range: character.Ranged}

	bonus, err := AttackBonus(attacker, attack)
	require.NoError(t, err)
	assert.Equal(t, 5, bonus, "ranged attacks derive from dexterity")
}

func TestAttackBonusExplicitStatWins(t *testing.T) {
	attacker := &Combatant{
		Name:      "duelist",
		Level:     1,
		Abilities: character.AbilityScores{Strength: 8, Dexterity: 18},
	}
	attack := character.Attack{Name: "rapier", Damage: "1d8", Range: character.Melee, Stat: character.Dexterity}

	bonus, err := AttackBonus(attacker, attack)
	require.NoError(t, err)
	assert.Equal(t, 6, bonus, "explicit governing stat overrides the range heuristic")
}

func TestAttackBonusMissingStatFallsBackToProficiency(t *testing.T) {
	attacker := &Combatant{Name: "broken", Level: 4}
	attack := character.Attack{Name: "slam", Damage: "1d4"}

	bonus, err := AttackBonus(attacker, attack)
	require.Error(t, err)
	assert.True(t, IsRecoverable(err), "missing stat must be recoverable")
	assert.Equal(t, 2, bonus, "fallback is the bare proficiency bonus")

	var de *DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, MissingStat, de.Kind)
}

func TestSpellAttackBonus(t *testing.T) {
	caster := &Combatant{
		Name:      "elara",
		Level:     3,
		Abilities: character.AbilityScores{Wisdom: 16},
		Spellcasting: &character.Spellcasting{
			Ability: character.Wisdom,
			Slots:   map[int]int{1: 4},
		},
	}

	bonus, err := SpellAttackBonus(caster)
	require.NoError(t, err)
	// proficiency ceil(3/4)+1 = 2, WIS 16 modifier +3
	assert.Equal(t, 5, bonus)
}

func TestSpellAttackBonusNonCaster(t *testing.T) {
	caster := &Combatant{Name: "brute", Level: 2}

	bonus, err := SpellAttackBonus(caster)
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, 2, bonus)

	var de *DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, MissingSpellcasting, de.Kind)
}

func TestAbilityModifierFloorsNegatives(t *testing.T) {
	cases := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 14: 2, 20: 5}
	for score, want := range cases {
		assert.Equal(t, want, AbilityModifier(score), "score %d", score)
	}
}
