package dice

import (
	"fmt"
	"regexp"
	"strconv"
)

// Expression represents a parsed damage descriptor ready to be rolled.
//
// Invariant after a successful Parse: Count >= 1, Sides >= 2, Modifier >= 0.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat bonus (zero when omitted)
}

// damagePattern is the combat damage grammar: "NdM" or "NdM+B".
// The count is mandatory and the modifier, when present, is additive only.
var damagePattern = regexp.MustCompile(`^(\d+)d(\d+)(?:\+(\d+))?$`)

// Parse parses a damage descriptor string into an Expression.
// Supported forms: "1d8", "2d6+3".
//
// Precondition: expr must be non-empty.
// Postcondition: Returns a valid Expression or a descriptive error; the zero
// Expression is returned on error so callers fall back to zero damage.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty damage descriptor")
	}

	m := damagePattern.FindStringSubmatch(expr)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: descriptor %q does not match NdM or NdM+B", expr)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q", expr)
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q", expr)
		}
	}

	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid damage descriptor.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
