package dice

// RollDie returns a uniformly distributed integer in [1, sides].
//
// Precondition: sides >= 2; src must be non-nil.
func RollDie(sides int, src Source) int {
	return src.Intn(sides) + 1
}

// D20 rolls a single twenty-sided die.
//
// Postcondition: Returns a value in [1, 20].
func D20(src Source) int {
	return RollDie(20, src)
}

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (Count >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = RollDie(expr.Sides, src)
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a RollResult or a parse error. On error the zero
// RollResult (Total 0) is returned so callers degrade to zero damage.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
