// Package grid models battlefield positions for the combat engine.
//
// The engine never decides movement legality itself; callers supply a
// MoveValidator implementation.
package grid

// Position is a battlefield tile coordinate. The origin is the top-left
// corner; x grows rightward and y grows downward.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Distance returns the Chebyshev distance between two positions: the number
// of king moves separating them.
//
// Postcondition: Returns >= 0; returns 0 iff a == b.
func Distance(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Size describes battlefield dimensions in tiles.
type Size struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the battlefield bounds.
func (s Size) Contains(p Position) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// MoveValidator decides whether an entity may move between two tiles.
// Implemented by the battlefield collaborator outside this engine.
type MoveValidator interface {
	// IsValidMove reports whether entityID may move from one position to
	// another given current tile occupancy.
	IsValidMove(entityID string, from, to Position, occupied map[string]Position) bool
}

// BoundsValidator is a minimal MoveValidator that only enforces battlefield
// bounds and tile occupancy. Useful as a default and in tests.
type BoundsValidator struct {
	Bounds Size
}

// IsValidMove accepts any in-bounds destination not occupied by another entity.
//
// Postcondition: Returns false for out-of-bounds destinations and for tiles
// held by a different entity.
func (v BoundsValidator) IsValidMove(entityID string, from, to Position, occupied map[string]Position) bool {
	if !v.Bounds.Contains(to) {
		return false
	}
	for id, p := range occupied {
		if id != entityID && p == to {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
