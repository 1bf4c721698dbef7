package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/AzhaqCom/theone/internal/game/dice"
)

// fixedSource always returns value-1 from Intn, so every die lands on value.
type fixedSource struct{ value int }

func (f fixedSource) Intn(n int) int { return f.value - 1 }

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dice_ := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.IntRange(0, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: "NdM+B", Dice: dice_, Modifier: modifier}

		expected := modifier
		for _, d := range dice_ {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
	})
}

func TestParse_ValidDescriptors(t *testing.T) {
	tests := []struct {
		in    string
		count int
		sides int
		mod   int
	}{
		{"1d8", 1, 8, 0},
		{"2d6+3", 2, 6, 3},
		{"10d10+25", 10, 10, 25},
		{"1d20", 1, 20, 0},
	}
	for _, tc := range tests {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, "Parse(%q)", tc.in)
		assert.Equal(t, tc.count, e.Count, "count of %q", tc.in)
		assert.Equal(t, tc.sides, e.Sides, "sides of %q", tc.in)
		assert.Equal(t, tc.mod, e.Modifier, "modifier of %q", tc.in)
	}
}

func TestParse_RejectsInvalidDescriptors(t *testing.T) {
	invalid := []string{
		"", "d8", "2d", "2d6-1", "2d6+", "bogus", "2 d6", "2d6+3x", "-1d6", "2d6+3+4",
	}
	for _, in := range invalid {
		_, err := dice.Parse(in)
		assert.Error(t, err, "Parse(%q) must fail", in)
	}
}

func TestParse_RejectsDegenerateDice(t *testing.T) {
	_, err := dice.Parse("0d6")
	assert.Error(t, err)
	_, err = dice.Parse("2d1")
	assert.Error(t, err)
}

func TestRoll_FixedSource(t *testing.T) {
	// Die source fixed to always return 4: 2d6+3 => 2*4+3 = 11.
	r := dice.Roll(dice.MustParse("2d6+3"), fixedSource{value: 4})
	assert.Equal(t, []int{4, 4}, r.Dice)
	assert.Equal(t, 11, r.Total())
}

func TestRollExpr_BadDescriptorYieldsZero(t *testing.T) {
	r, err := dice.RollExpr("not-dice", fixedSource{value: 1})
	require.Error(t, err)
	assert.Equal(t, 0, r.Total(), "failed parse must degrade to zero damage")
}

func TestRollDie_Range_Property(t *testing.T) {
	src := dice.NewSeededSource(42)
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		v := dice.RollDie(sides, src)
		assert.GreaterOrEqual(rt, v, 1)
		assert.LessOrEqual(rt, v, sides)
	})
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(7)
	b := dice.NewSeededSource(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20), "same seed must reproduce the same sequence")
	}
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestLoggedRoller_RollExpr(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSource{value: 3}, zap.NewNop())
	r, err := roller.RollExpr("2d8+1")
	require.NoError(t, err)
	assert.Equal(t, 7, r.Total())

	_, err = roller.RollExpr("nope")
	assert.Error(t, err)
}
