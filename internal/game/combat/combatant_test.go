package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/AzhaqCom/theone/internal/game/character"
)

func TestApplyDamageFloorsAtZero(t *testing.T) {
	c := &Combatant{Name: "goblin", CurrentHP: 5, MaxHP: 7}
	c.ApplyDamage(3)
	assert.Equal(t, 2, c.CurrentHP, "damage should subtract from current HP")
	assert.False(t, c.IsDefeated(), "combatant with HP left is not defeated")

	c.ApplyDamage(10)
	assert.Equal(t, 0, c.CurrentHP, "overkill damage must floor HP at zero")
	assert.True(t, c.IsDefeated(), "zero HP means defeated")
}

func TestApplyHealingCapsAtMax(t *testing.T) {
	c := &Combatant{Name: "elara", CurrentHP: 4, MaxHP: 12}
	c.ApplyHealing(3)
	assert.Equal(t, 7, c.CurrentHP)

	c.ApplyHealing(100)
	assert.Equal(t, 12, c.CurrentHP, "healing must cap at MaxHP")
}

func TestHPInvariantUnderRandomMutations(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxHP := rapid.IntRange(1, 200).Draw(t, "maxHP")
		c := &Combatant{Name: "subject", CurrentHP: maxHP, MaxHP: maxHP}
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(0, 300).Draw(t, "amount")
			if rapid.Bool().Draw(t, "heal") {
				c.ApplyHealing(amount)
			} else {
				c.ApplyDamage(amount)
			}
			require.GreaterOrEqual(t, c.CurrentHP, 0, "HP must never go negative")
			require.LessOrEqual(t, c.CurrentHP, c.MaxHP, "HP must never exceed max")
		}
	})
}

func TestFromSheetClonesSpellcasting(t *testing.T) {
	sheet := &character.Sheet{
		ID:         42,
		Name:       "Elara",
		Level:      3,
		MaxHP:      21,
		CurrentHP:  21,
		ArmorClass: 14,
		Spellcasting: &character.Spellcasting{
			Ability: character.Wisdom,
			Slots:   map[int]int{1: 4, 2: 2},
		},
	}

	c := FromSheet(KindCompanion, "companion_elara", sheet)
	require.NotNil(t, c.Spellcasting)
	require.NoError(t, c.Spellcasting.ConsumeSlot(1))

	assert.Equal(t, 3, c.Spellcasting.Slots[1], "combat copy should consume the slot")
	assert.Equal(t, 4, sheet.Spellcasting.Slots[1], "stored sheet must not see mid-combat slot consumption")
	assert.Equal(t, int64(42), c.SheetID)
}
