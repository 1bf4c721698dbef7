package encounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AzhaqCom/theone/internal/game/bestiary"
	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/combat"
	"github.com/AzhaqCom/theone/internal/game/dice"
	"github.com/AzhaqCom/theone/internal/game/grid"
)

// rollSource feeds predetermined d20 faces in order.
type rollSource struct {
	faces []int
	i     int
}

func (s *rollSource) Intn(n int) int {
	if s.i >= len(s.faces) {
		return 0
	}
	v := s.faces[s.i]
	s.i++
	return (v - 1) % n
}

func testRegistry(t *testing.T) *bestiary.Registry {
	t.Helper()
	r := bestiary.NewRegistry()
	require.NoError(t, r.Register(&bestiary.Template{
		ID: "goblin", Name: "Goblin", Level: 1, MaxHP: 7, AC: 13,
		Abilities: character.AbilityScores{Strength: 8, Dexterity: 14},
		Attacks:   []character.Attack{{Name: "Scimitar", Damage: "1d6"}},
	}))
	require.NoError(t, r.Register(&bestiary.Template{
		ID: "ogre", Name: "Ogre", Level: 3, MaxHP: 30, AC: 11,
		Abilities: character.AbilityScores{Strength: 18, Dexterity: 8},
		Attacks:   []character.Attack{{Name: "Club", Damage: "2d8+4"}},
	}))
	return r
}

func TestSpawnEnemiesIDsAndNames(t *testing.T) {
	enemies, err := SpawnEnemies(Spec{Groups: []Group{
		{Type: "goblin", Count: 2},
		{Type: "ogre", Count: 1},
	}}, testRegistry(t), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, enemies, 3)

	assert.Equal(t, "goblin_1_1", enemies[0].ID)
	assert.Equal(t, "goblin_1_2", enemies[1].ID)
	assert.Equal(t, "ogre_2_1", enemies[2].ID)
	assert.Equal(t, "Goblin 1", enemies[0].Name)
	assert.Equal(t, "Goblin 2", enemies[1].Name)
	assert.Equal(t, "Ogre", enemies[2].Name, "single-instance groups get no numeric suffix")

	assert.Equal(t, combat.KindEnemy, enemies[0].Kind)
	assert.Equal(t, 7, enemies[0].CurrentHP)
	assert.Equal(t, "goblin", enemies[0].TemplateID)
}

func TestSpawnEnemiesInstancesDoNotShareAttacks(t *testing.T) {
	enemies, err := SpawnEnemies(Spec{Groups: []Group{{Type: "goblin", Count: 2}}},
		testRegistry(t), zap.NewNop())
	require.NoError(t, err)

	enemies[0].Attacks[0].Damage = "9d9"
	assert.Equal(t, "1d6", enemies[1].Attacks[0].Damage, "spawned instances must not alias template attack slices")
}

func TestSpawnEnemiesEmptySpecIsFatal(t *testing.T) {
	_, err := SpawnEnemies(Spec{}, testRegistry(t), zap.NewNop())
	assert.ErrorIs(t, err, ErrEmptySpec)
}

func TestSpawnEnemiesSkipsUnknownTypes(t *testing.T) {
	enemies, err := SpawnEnemies(Spec{Groups: []Group{
		{Type: "dragon", Count: 1},
		{Type: "goblin", Count: 1},
	}}, testRegistry(t), zap.NewNop())
	require.NoError(t, err, "an unknown type key must not abort the whole encounter")
	require.Len(t, enemies, 1)
	assert.Equal(t, "goblin_2_1", enemies[0].ID, "group indices count skipped groups")
}

func initiativeParty() (*combat.Combatant, *combat.Combatant, []*combat.Combatant) {
	player := &combat.Combatant{
		ID: "player_theron", Name: "Theron", Kind: combat.KindPlayer,
		CurrentHP: 24, MaxHP: 24,
		Abilities: character.AbilityScores{Dexterity: 12},
	}
	companion := &combat.Combatant{
		ID: "companion_elara", Name: "Elara", Kind: combat.KindCompanion,
		CurrentHP: 18, MaxHP: 18,
		Abilities: character.AbilityScores{Dexterity: 12},
	}
	enemies := []*combat.Combatant{
		{ID: "goblin_1_1", Name: "Goblin 1", Kind: combat.KindEnemy, CurrentHP: 7, MaxHP: 7,
			Abilities: character.AbilityScores{Dexterity: 12}},
		{ID: "goblin_1_2", Name: "Goblin 2", Kind: combat.KindEnemy, CurrentHP: 7, MaxHP: 7,
			Abilities: character.AbilityScores{Dexterity: 12}},
	}
	return player, companion, enemies
}

func TestRollInitiativeSortsDescending(t *testing.T) {
	player, companion, enemies := initiativeParty()
	// Equal DEX mods: faces decide. Player 5, companion 18, enemies 12 and 20.
	src := &rollSource{faces: []int{5, 18, 12, 20}}

	order, err := RollInitiative(player, companion, enemies, src)
	require.NoError(t, err)
	require.Len(t, order, 4)

	assert.Equal(t, "goblin_1_2", order[0].Combatant.ID)
	assert.Equal(t, "companion_elara", order[1].Combatant.ID)
	assert.Equal(t, "goblin_1_1", order[2].Combatant.ID)
	assert.Equal(t, "player_theron", order[3].Combatant.ID)
}

func TestRollInitiativeTieBreakPriority(t *testing.T) {
	player, companion, enemies := initiativeParty()
	// Everyone rolls the same face with the same modifier.
	src := &rollSource{faces: []int{10, 10, 10, 10}}

	order, err := RollInitiative(player, companion, enemies, src)
	require.NoError(t, err)

	assert.Equal(t, "player_theron", order[0].Combatant.ID, "player wins initiative ties")
	assert.Equal(t, "companion_elara", order[1].Combatant.ID)
	assert.Equal(t, "goblin_1_1", order[2].Combatant.ID, "enemy ties keep stable input order")
	assert.Equal(t, "goblin_1_2", order[3].Combatant.ID)
}

func TestRollInitiativeAddsDexModifier(t *testing.T) {
	player, _, _ := initiativeParty()
	player.Abilities.Dexterity = 16
	enemy := &combat.Combatant{
		ID: "goblin_1_1", Kind: combat.KindEnemy, CurrentHP: 7, MaxHP: 7,
		Abilities: character.AbilityScores{Dexterity: 10},
	}
	// Player face 10 + 3 = 13; enemy face 12 + 0 = 12.
	src := &rollSource{faces: []int{10, 12}}

	order, err := RollInitiative(player, nil, []*combat.Combatant{enemy}, src)
	require.NoError(t, err)
	assert.Equal(t, 13, order[0].Initiative)
	assert.Equal(t, "player_theron", order[0].Combatant.ID)
}

func TestRollInitiativeRequiresPlayer(t *testing.T) {
	_, companion, enemies := initiativeParty()
	_, err := RollInitiative(nil, companion, enemies, &rollSource{})
	assert.ErrorIs(t, err, combat.ErrNoPlayer)

	player := &combat.Combatant{ID: "player", Kind: combat.KindPlayer}
	_, err = RollInitiative(player, nil, enemies, &rollSource{})
	assert.ErrorIs(t, err, combat.ErrNoPlayer, "a player without ability scores cannot fight")
}

func TestRollInitiativeSeededReproducibility(t *testing.T) {
	roll := func() []string {
		player, companion, enemies := initiativeParty()
		order, err := RollInitiative(player, companion, enemies, dice.NewSeededSource(99))
		require.NoError(t, err)
		ids := make([]string, len(order))
		for i, e := range order {
			ids[i] = e.Combatant.ID
		}
		return ids
	}
	assert.Equal(t, roll(), roll(), "a seeded source must reproduce the same order")
}

func TestPlaceCombatantsDefaults(t *testing.T) {
	player, companion, enemies := initiativeParty()
	positions := PlaceCombatants(player, companion, enemies, nil, DefaultGridSize)

	require.Len(t, positions, 4)
	assert.Equal(t, grid.Position{X: 1, Y: 3}, positions["player_theron"])
	assert.Equal(t, grid.Position{X: 0, Y: 3}, positions["companion_elara"], "the companion stands behind the player")

	seen := make(map[grid.Position]bool)
	for id, p := range positions {
		assert.True(t, DefaultGridSize.Contains(p), "position for %s must be in bounds", id)
		assert.False(t, seen[p], "no two combatants share tile %v", p)
		seen[p] = true
	}
	for _, e := range enemies {
		assert.GreaterOrEqual(t, positions[e.ID].X, 5, "enemies cluster in the right two-fifths")
	}
}

func TestPlaceCombatantsWrapsEnemyRows(t *testing.T) {
	player, _, _ := initiativeParty()
	enemies := make([]*combat.Combatant, 5)
	for i := range enemies {
		enemies[i] = &combat.Combatant{ID: string(rune('a' + i)), Kind: combat.KindEnemy, CurrentHP: 1, MaxHP: 1}
	}

	positions := PlaceCombatants(player, nil, enemies, nil, DefaultGridSize)
	assert.Equal(t, grid.Position{X: 5, Y: 1}, positions["a"])
	assert.Equal(t, grid.Position{X: 7, Y: 1}, positions["c"])
	assert.Equal(t, grid.Position{X: 5, Y: 2}, positions["d"], "a fourth enemy wraps onto the next row")
}

func TestPlaceCombatantsCustomOverrides(t *testing.T) {
	player, companion, enemies := initiativeParty()
	custom := map[string]grid.Position{
		"goblin_1_1": {X: 4, Y: 0},
		"goblin_1_2": {X: 99, Y: 99}, // out of bounds, falls back per enemy
	}

	positions := PlaceCombatants(player, companion, enemies, custom, DefaultGridSize)
	assert.Equal(t, grid.Position{X: 4, Y: 0}, positions["goblin_1_1"])
	assert.Equal(t, grid.Position{X: 6, Y: 1}, positions["goblin_1_2"],
		"an invalid custom entry falls back to that enemy's default slot")
}
