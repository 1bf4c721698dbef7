package combat

// Outcome is the verdict of the combat outcome evaluator.
type Outcome int

// Encounter verdicts.
const (
	Continuing Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Continuing:
		return "continuing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Evaluate decides whether the encounter is over.
//
// Defeat requires the player down and, when a companion exists, the companion
// down as well. Victory requires every enemy down. This is checked after
// every HP mutation and every turn advance so a mid-round kill ends combat
// immediately.
//
// Precondition: player must not be nil; companion may be nil.
// Postcondition: Victory and Defeat are mutually exclusive; Defeat wins when
// both sides are wiped out simultaneously.
func Evaluate(player, companion *Combatant, enemies []*Combatant) Outcome {
	partyDown := player.IsDefeated() && (companion == nil || companion.IsDefeated())
	if partyDown {
		return Defeat
	}
	for _, e := range enemies {
		if !e.IsDefeated() {
			return Continuing
		}
	}
	return Victory
}
