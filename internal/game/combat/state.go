package combat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AzhaqCom/theone/internal/game/effect"
	"github.com/AzhaqCom/theone/internal/game/grid"
)

// Phase identifies one state of the encounter state machine.
type Phase string

// Encounter phases. Dispatch re-enters the combat phase between individual
// turns; victory and defeat are terminal.
const (
	PhaseSetup         Phase = "setup"
	PhaseCombat        Phase = "combat"
	PhasePlayerTurn    Phase = "player-turn"
	PhaseCompanionTurn Phase = "companion-turn"
	PhaseEnemyTurn     Phase = "enemy-turn"
	PhaseVictory       Phase = "victory"
	PhaseDefeat        Phase = "defeat"
)

// Terminal reports whether the phase accepts no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// turnPhaseFor maps combatant variants to their turn phase.
var turnPhaseFor = map[Kind]Phase{
	KindPlayer:    PhasePlayerTurn,
	KindCompanion: PhaseCompanionTurn,
	KindEnemy:     PhaseEnemyTurn,
}

// TurnEntry pairs a combatant with its rolled initiative value.
type TurnEntry struct {
	Combatant  *Combatant
	Initiative int
}

// TurnOrder is the initiative-ordered sequence of combatants. The ordering is
// fixed once rolled: entries are mutated in place but never reordered or
// removed mid-combat, so defeated combatants keep their slot.
type TurnOrder []TurnEntry

// State is the aggregate combat state for one encounter. It is owned
// exclusively by the turn orchestrator for the encounter's lifetime and is
// not safe for concurrent use.
type State struct {
	// EncounterID uniquely identifies this encounter instance.
	EncounterID string

	order     TurnOrder
	turnIndex int
	round     int
	phase     Phase

	// positions maps combatant id to battlefield tile.
	positions map[string]grid.Position
	// effects maps combatant id to its active effect set.
	effects map[string]*effect.Set

	log  *Log
	sink Sink
}

// NewState creates a combat State in the setup phase.
//
// Precondition: order must be non-empty; positions may be nil.
// Postcondition: Phase() == PhaseSetup; the log is empty.
func NewState(order TurnOrder, positions map[string]grid.Position) (*State, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("combat: turn order must not be empty")
	}
	if positions == nil {
		positions = make(map[string]grid.Position)
	}
	return &State{
		EncounterID: uuid.NewString(),
		order:       order,
		round:       1,
		phase:       PhaseSetup,
		positions:   positions,
		effects:     make(map[string]*effect.Set),
		log:         NewLog(),
	}, nil
}

// Phase returns the current phase.
func (s *State) Phase() Phase { return s.phase }

// Order returns the turn order. Callers must not reorder it.
func (s *State) Order() TurnOrder { return s.order }

// TurnIndex returns the current 0-based turn index.
func (s *State) TurnIndex() int { return s.turnIndex }

// Round returns the current 1-based round number. A round ends when the turn
// index wraps past the end of the initiative order.
func (s *State) Round() int { return s.round }

// Current returns the combatant at the current turn index.
func (s *State) Current() *Combatant { return s.order[s.turnIndex].Combatant }

// Log returns the encounter's narrative log.
func (s *State) Log() *Log { return s.log }

// AttachSink registers an external sink that mirrors every emitted message.
func (s *State) AttachSink(sink Sink) { s.sink = sink }

// Emit appends a message to the log and mirrors it to the attached sink.
func (s *State) Emit(m Message) {
	s.log.Append(m)
	if s.sink != nil {
		s.sink.Append(m)
	}
}

// Position returns a combatant's battlefield tile.
func (s *State) Position(id string) (grid.Position, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// SetPosition records a combatant's battlefield tile. Movement legality is
// the caller's concern; the engine never computes it.
func (s *State) SetPosition(id string, p grid.Position) {
	s.positions[id] = p
}

// Positions returns a copy of the position map.
func (s *State) Positions() map[string]grid.Position {
	out := make(map[string]grid.Position, len(s.positions))
	for k, v := range s.positions {
		out[k] = v
	}
	return out
}

// EffectsFor returns the active effect set for a combatant, creating it on
// first use.
func (s *State) EffectsFor(id string) *effect.Set {
	es, ok := s.effects[id]
	if !ok {
		es = effect.NewSet()
		s.effects[id] = es
	}
	return es
}

// EffectSets returns the live per-combatant effect sets keyed by id.
func (s *State) EffectSets() map[string]*effect.Set { return s.effects }

// ByID returns the combatant with the given id, or nil.
func (s *State) ByID(id string) *Combatant {
	for _, e := range s.order {
		if e.Combatant.ID == id {
			return e.Combatant
		}
	}
	return nil
}

// Player returns the player combatant, or nil if absent.
func (s *State) Player() *Combatant { return s.firstOfKind(KindPlayer) }

// Companion returns the companion combatant, or nil if absent.
func (s *State) Companion() *Combatant { return s.firstOfKind(KindCompanion) }

// Enemies returns all enemy combatants in turn order.
func (s *State) Enemies() []*Combatant {
	var out []*Combatant
	for _, e := range s.order {
		if e.Combatant.Kind == KindEnemy {
			out = append(out, e.Combatant)
		}
	}
	return out
}

func (s *State) firstOfKind(k Kind) *Combatant {
	for _, e := range s.order {
		if e.Combatant.Kind == k {
			return e.Combatant
		}
	}
	return nil
}

// Evaluate runs the outcome evaluator over the current combatants.
//
// Precondition: the turn order contains a player.
func (s *State) Evaluate() Outcome {
	player := s.Player()
	if player == nil {
		// No combat without a player; treat as a wipe.
		return Defeat
	}
	return Evaluate(player, s.Companion(), s.Enemies())
}

// EnterDispatch moves from setup (or a finished turn) into the dispatch
// phase and settles on the next living combatant's turn phase, emitting a
// turn-start message.
//
// Defeated combatants are skipped in place. When a full pass over the turn
// order finds nobody alive, ErrNoLivingCombatants is returned and the phase
// stays at combat; the caller must force a verdict via the outcome evaluator.
//
// Postcondition: On nil error the phase is one of the three turn phases and
// Current() is alive. Terminal phases are absorbing: calling EnterDispatch
// after victory or defeat returns the terminal phase unchanged.
func (s *State) EnterDispatch() (Phase, error) {
	if s.phase.Terminal() {
		return s.phase, nil
	}
	s.phase = PhaseCombat

	for attempts := 0; attempts < len(s.order); attempts++ {
		c := s.order[s.turnIndex].Combatant
		if !c.IsDefeated() {
			s.phase = turnPhaseFor[c.Kind]
			s.Emit(Message{
				Category: CategoryTurnStart,
				Text:     fmt.Sprintf("It is %s's turn.", c.Name),
			})
			return s.phase, nil
		}
		s.advanceIndex()
	}
	return s.phase, ErrNoLivingCombatants
}

// advanceIndex steps to the next initiative slot. Wrapping past the end of
// the order closes the round: the counter increments and effect durations
// tick down.
func (s *State) advanceIndex() {
	s.turnIndex = (s.turnIndex + 1) % len(s.order)
	if s.turnIndex == 0 {
		s.round++
		s.TickEffects()
	}
}

// AdvanceTurn steps to the next slot in initiative order and re-enters
// dispatch. It is idempotent with respect to dead-combatant skipping: from
// any state it lands on a living combatant's turn or a terminal phase within
// len(order) steps.
func (s *State) AdvanceTurn() (Phase, error) {
	if s.phase.Terminal() {
		return s.phase, nil
	}
	s.advanceIndex()
	return s.EnterDispatch()
}

// Finish transitions to the terminal phase for the given verdict and emits
// the closing narrative message. Finishing an already-terminal state is a
// no-op.
//
// Precondition: verdict must be Victory or Defeat.
func (s *State) Finish(verdict Outcome) {
	if s.phase.Terminal() {
		return
	}
	switch verdict {
	case Victory:
		s.phase = PhaseVictory
		s.Emit(Message{Category: CategoryVictory, Text: "The enemies are defeated. Victory!"})
	case Defeat:
		s.phase = PhaseDefeat
		s.Emit(Message{Category: CategoryDefeat, Text: "The party has fallen. Defeat."})
	}
}

// TickEffects advances effect durations for every combatant by one round and
// narrates expirations. Called automatically at each round boundary.
func (s *State) TickEffects() {
	for id, set := range s.effects {
		for _, kind := range set.Tick() {
			c := s.ByID(id)
			if c == nil {
				continue
			}
			s.Emit(Message{
				Category: CategoryInfo,
				Text:     fmt.Sprintf("The %s effect on %s fades.", kind, c.Name),
			})
		}
	}
}
