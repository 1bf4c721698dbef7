package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzhaqCom/theone/internal/game/effect"
)

func partyOrder() TurnOrder {
	return TurnOrder{
		{Combatant: &Combatant{ID: "player_theron", Name: "Theron", Kind: KindPlayer, CurrentHP: 24, MaxHP: 24}, Initiative: 18},
		{Combatant: &Combatant{ID: "companion_elara", Name: "Elara", Kind: KindCompanion, CurrentHP: 18, MaxHP: 18}, Initiative: 14},
		{Combatant: &Combatant{ID: "enemy_goblin_1_1", Name: "Goblin", Kind: KindEnemy, CurrentHP: 7, MaxHP: 7}, Initiative: 11},
	}
}

func TestNewStateRequiresCombatants(t *testing.T) {
	_, err := NewState(nil, nil)
	require.Error(t, err)
}

func TestEnterDispatchRoutesByKind(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseSetup, s.Phase())

	phase, err := s.EnterDispatch()
	require.NoError(t, err)
	assert.Equal(t, PhasePlayerTurn, phase)
	assert.Equal(t, "Theron", s.Current().Name)

	phase, err = s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, PhaseCompanionTurn, phase)

	phase, err = s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, PhaseEnemyTurn, phase)

	// Wraps back around the initiative order.
	phase, err = s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, PhasePlayerTurn, phase)
}

func TestEnterDispatchSkipsDefeatedInPlace(t *testing.T) {
	order := partyOrder()
	order[1].Combatant.CurrentHP = 0
	s, err := NewState(order, nil)
	require.NoError(t, err)

	_, err = s.EnterDispatch()
	require.NoError(t, err)

	phase, err := s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, PhaseEnemyTurn, phase, "the fallen companion's slot is skipped, not removed")
	assert.Len(t, s.Order(), 3, "defeated combatants keep their slot in the order")
}

func TestEnterDispatchNoLivingCombatants(t *testing.T) {
	order := partyOrder()
	for _, e := range order {
		e.Combatant.CurrentHP = 0
	}
	s, err := NewState(order, nil)
	require.NoError(t, err)

	_, err = s.EnterDispatch()
	assert.ErrorIs(t, err, ErrNoLivingCombatants)
}

func TestTurnStartNarration(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)

	_, err = s.EnterDispatch()
	require.NoError(t, err)

	msgs := s.Log().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, CategoryTurnStart, msgs[0].Category)
	assert.Equal(t, "It is Theron's turn.", msgs[0].Text)
}

func TestTerminalPhasesAbsorb(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)

	s.Finish(Victory)
	assert.Equal(t, PhaseVictory, s.Phase())

	phase, err := s.EnterDispatch()
	require.NoError(t, err)
	assert.Equal(t, PhaseVictory, phase, "dispatch after a verdict must not restart combat")

	phase, err = s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, PhaseVictory, phase)

	before := s.Log().Len()
	s.Finish(Defeat)
	assert.Equal(t, PhaseVictory, s.Phase(), "finishing twice must not flip the verdict")
	assert.Equal(t, before, s.Log().Len())
}

func TestFinishNarratesVerdict(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)
	s.Finish(Defeat)

	msgs := s.Log().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, CategoryDefeat, msgs[0].Category)
}

func TestEmitMirrorsToSink(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)
	external := NewLog()
	s.AttachSink(external)

	_, err = s.EnterDispatch()
	require.NoError(t, err)

	assert.Equal(t, s.Log().Messages(), external.Messages())
}

func TestTickEffectsNarratesExpiry(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)
	require.NoError(t, s.EffectsFor("player_theron").Apply(effect.Protect, "companion_elara", 1))

	s.TickEffects()

	msgs := s.Log().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, CategoryInfo, msgs[0].Category)
	assert.Contains(t, msgs[0].Text, "protect")
	assert.Contains(t, msgs[0].Text, "Theron")
	assert.False(t, s.EffectsFor("player_theron").Has(effect.Protect))
}

func TestRoundClosesWhenOrderWraps(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Round())

	require.NoError(t, s.EffectsFor("player_theron").Apply(effect.Protect, "companion_elara", 1))

	_, err = s.EnterDispatch()
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = s.AdvanceTurn()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, s.Round(), "mid-round advances must not tick effect durations")
	assert.True(t, s.EffectsFor("player_theron").Has(effect.Protect))

	_, err = s.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Round())
	assert.False(t, s.EffectsFor("player_theron").Has(effect.Protect),
		"a one-round effect expires at the round boundary")
}

func TestByIDAndRoleAccessors(t *testing.T) {
	s, err := NewState(partyOrder(), nil)
	require.NoError(t, err)

	require.NotNil(t, s.Player())
	assert.Equal(t, "Theron", s.Player().Name)
	require.NotNil(t, s.Companion())
	assert.Equal(t, "Elara", s.Companion().Name)
	assert.Len(t, s.Enemies(), 1)
	assert.Nil(t, s.ByID("nobody"))
	assert.NotEmpty(t, s.EncounterID)
}
