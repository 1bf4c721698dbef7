package companion

import (
	"github.com/AzhaqCom/theone/internal/game/combat"
	"github.com/AzhaqCom/theone/internal/game/grid"
)

// OptimalMovement computes a position that brings the mover within
// rangeTiles of the target, stepping one tile at a time toward it. Every
// step is checked against the injected validator; legality is never decided
// here. Movement stops at the first blocked step.
//
// Precondition: validator must not be nil; rangeTiles >= 1.
// Postcondition: Returns the best reachable position and whether it differs
// from the starting position. The mover's recorded position is not changed.
func OptimalMovement(state *combat.State, moverID, targetID string, rangeTiles int, validator grid.MoveValidator) (grid.Position, bool) {
	from, okFrom := state.Position(moverID)
	target, okTarget := state.Position(targetID)
	if !okFrom || !okTarget {
		return from, false
	}
	if rangeTiles < 1 {
		rangeTiles = 1
	}

	occupied := state.Positions()
	current := from
	for grid.Distance(current, target) > rangeTiles {
		next := stepToward(current, target)
		if next == current || !validator.IsValidMove(moverID, current, next, occupied) {
			break
		}
		occupied[moverID] = next
		current = next
	}
	return current, current != from
}

// stepToward returns the king move from a toward b.
func stepToward(a, b grid.Position) grid.Position {
	return grid.Position{X: a.X + sign(b.X-a.X), Y: a.Y + sign(b.Y-a.Y)}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
