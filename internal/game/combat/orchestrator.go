package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/dice"
	"github.com/AzhaqCom/theone/internal/game/effect"
)

// DecisionType identifies a companion decision variant.
type DecisionType string

// Companion decision variants.
const (
	DecideAttack  DecisionType = "attack"
	DecideSpell   DecisionType = "spell"
	DecideHeal    DecisionType = "heal_support"
	DecideProtect DecisionType = "protect"
	DecideTaunt   DecisionType = "taunt"
	DecideNone    DecisionType = "none"
)

// Decision is one companion choice for the current turn.
type Decision struct {
	Type DecisionType
	// Attack is set for DecideAttack.
	Attack *character.Attack
	// Spell and SpellSlot are set for DecideSpell and DecideHeal.
	Spell     *character.Spell
	SpellSlot int
	// TargetID names the target combatant; empty for self-targeted support.
	TargetID string
}

// CompanionDecider chooses the companion's action each turn. Implemented by
// the companion package; kept as an interface so decision logic stays
// separate from orchestration.
type CompanionDecider interface {
	Decide(state *State, companion *Combatant) (Decision, error)
}

// Checkpointer persists combatant state at defined checkpoints (end of
// action, end of encounter). Implemented by the character store adapter.
type Checkpointer interface {
	SaveCombatant(ctx context.Context, c *Combatant) error
}

// PlayerAction is a player-submitted action for the player's turn.
// Exactly one of Attack or Spell must be set.
type PlayerAction struct {
	Attack    *character.Attack
	Spell     *character.Spell
	SpellSlot int
	TargetID  string
}

// ErrNotPlayerTurn is returned when a player action arrives out of phase.
var ErrNotPlayerTurn = fmt.Errorf("combat: not the player's turn")

// ErrEncounterAborted is returned for actions submitted after teardown.
var ErrEncounterAborted = fmt.Errorf("combat: encounter aborted")

// ErrInvalidAction is returned for player actions that cannot be attempted;
// the turn is not consumed.
var ErrInvalidAction = fmt.Errorf("combat: invalid action")

// OrchestratorConfig wires an Orchestrator's collaborators.
type OrchestratorConfig struct {
	State  *State
	Source dice.Source
	Logger *zap.Logger
	// Decider is required when the turn order contains a companion.
	Decider CompanionDecider
	// Checkpoint is optional; nil disables store write-back.
	Checkpoint Checkpointer
	// Sink is an optional external narrative sink.
	Sink Sink
	// TurnDelay is the presentation pause before each turn advance.
	TurnDelay time.Duration
	// OnPlayerTurn is invoked when control passes to the player; the
	// external input collaborator must eventually call SubmitPlayerAction.
	// It runs under the orchestrator lock and must not call back into the
	// orchestrator synchronously.
	OnPlayerTurn func(player *Combatant)
}

// Orchestrator drives one encounter's round loop: it composes the turn
// sequencer, action resolver, companion decider, and outcome evaluator, and
// owns the combat state exclusively for the encounter's lifetime.
type Orchestrator struct {
	mu    sync.Mutex
	state *State
	src   dice.Source
	log   *zap.Logger

	decider    CompanionDecider
	checkpoint Checkpointer
	delay      time.Duration
	sched      *Scheduler

	onPlayerTurn func(player *Combatant)
	ctx          context.Context

	// aborted marks the orchestrator torn down: actions are rejected and
	// late continuations become no-ops even after the lock is reacquired.
	aborted bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewOrchestrator creates an Orchestrator for the given state.
//
// Precondition: cfg.State and cfg.Source must not be nil.
// Postcondition: Returns a ready Orchestrator; the encounter starts on Start.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.State == nil {
		return nil, fmt.Errorf("combat: orchestrator requires a state")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("combat: orchestrator requires a dice source")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Sink != nil {
		cfg.State.AttachSink(cfg.Sink)
	}
	return &Orchestrator{
		state:        cfg.State,
		src:          cfg.Source,
		log:          logger,
		decider:      cfg.Decider,
		checkpoint:   cfg.Checkpoint,
		delay:        cfg.TurnDelay,
		sched:        NewScheduler(),
		onPlayerTurn: cfg.OnPlayerTurn,
		done:         make(chan struct{}),
	}, nil
}

// State returns the orchestrated combat state.
func (o *Orchestrator) State() *State { return o.state }

// Phase returns the current encounter phase. Safe to call from any goroutine.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Phase()
}

// Done returns a channel closed when the encounter reaches a terminal phase
// or is aborted.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Start begins the encounter: it enters dispatch and runs turns until the
// player must act, a terminal phase is reached, or a presentation delay is
// pending.
//
// Precondition: the state must still be in the setup phase.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.aborted {
		return ErrEncounterAborted
	}
	if o.state.Phase() != PhaseSetup {
		return fmt.Errorf("combat: encounter already started (phase %s)", o.state.Phase())
	}
	o.ctx = ctx
	o.dispatchLocked()
	return nil
}

// Abort tears the encounter down: pending continuations are invalidated,
// further actions are rejected with ErrEncounterAborted, and final state is
// written back to the store. Abort is idempotent.
func (o *Orchestrator) Abort() {
	o.sched.Teardown()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.aborted {
		return
	}
	o.aborted = true
	o.writeBackLocked()
	o.doneOnce.Do(func() { close(o.done) })
}

// SubmitPlayerAction resolves the player's chosen action. Invalid actions
// are rejected with a narrative message and do not consume the turn.
//
// Postcondition: On nil error the action was resolved and the turn advance
// is scheduled; on error the phase is still player-turn.
func (o *Orchestrator) SubmitPlayerAction(action PlayerAction) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.aborted {
		return ErrEncounterAborted
	}
	if o.state.Phase() != PhasePlayerTurn {
		return ErrNotPlayerTurn
	}
	player := o.state.Current()

	if action.Attack == nil && action.Spell == nil {
		o.state.Emit(Message{Category: CategoryError, Text: "No action selected."})
		return fmt.Errorf("%w: no attack or spell selected", ErrInvalidAction)
	}
	target := o.state.ByID(action.TargetID)
	if target == nil {
		o.state.Emit(Message{Category: CategoryError, Text: "No target selected."})
		return fmt.Errorf("%w: unknown target %q", ErrInvalidAction, action.TargetID)
	}
	if target.IsDefeated() && (action.Spell == nil || action.Spell.Healing == "") {
		o.state.Emit(Message{
			Category: CategoryInfo,
			Text:     fmt.Sprintf("%s has already fallen.", target.Name),
		})
		return fmt.Errorf("%w: target %s is defeated", ErrInvalidAction, target.Name)
	}

	var result ActionResult
	switch {
	case action.Spell != nil:
		if sc := player.Spellcasting; sc != nil && !sc.CanCast(action.Spell.Name, action.SpellSlot) {
			o.state.Emit(Message{
				Category: CategoryError,
				Text:     fmt.Sprintf("%s cannot cast %s right now.", player.Name, action.Spell.Name),
			})
			return fmt.Errorf("%w: spell %s not castable", ErrInvalidAction, action.Spell.Name)
		}
		result = ResolveSpellAttack(player, *action.Spell, target, effect.ACBonus(o.state.EffectsFor(target.ID)), o.src)
		if result.Success && player.Spellcasting != nil {
			if err := player.Spellcasting.ConsumeSlot(action.SpellSlot); err != nil {
				o.log.Warn("spell slot consumption failed",
					zap.String("spell", action.Spell.Name), zap.Error(err))
			}
		}
	default:
		acBonus := effect.ACBonus(o.state.EffectsFor(target.ID))
		result = ResolveEntityAttack(player, *action.Attack, target, acBonus, o.src)
	}

	o.applyLocked(result)
	o.finishTurnLocked()
	return nil
}

// dispatchLocked settles the next turn phase and acts on it.
// Caller must hold o.mu.
func (o *Orchestrator) dispatchLocked() {
	phase, err := o.state.EnterDispatch()
	if err != nil {
		// Nobody left standing: force a verdict.
		o.log.Warn("turn order exhausted with no living combatants",
			zap.String("encounter", o.state.EncounterID))
		o.concludeLocked(o.state.Evaluate())
		return
	}

	switch phase {
	case PhasePlayerTurn:
		// The only suspension point that waits on an outside actor.
		if o.onPlayerTurn != nil {
			o.onPlayerTurn(o.state.Current())
		}
	case PhaseCompanionTurn:
		o.companionTurnLocked()
	case PhaseEnemyTurn:
		o.enemyTurnLocked()
	default:
		// Terminal phase: nothing to do.
	}
}

// companionTurnLocked runs the companion decision module and resolves its
// choice. Decider panics degrade to a "no action" message rather than
// crashing the round.
func (o *Orchestrator) companionTurnLocked() {
	companion := o.state.Current()

	// Outcome check before the decision module runs: if all enemies are
	// already down, the encounter ends without consulting the decider.
	if verdict := o.state.Evaluate(); verdict != Continuing {
		o.concludeLocked(verdict)
		return
	}

	decision := o.decideSafely(companion)
	result := o.resolveDecisionLocked(companion, decision)
	o.applyLocked(result)
	o.finishTurnLocked()
}

// decideSafely invokes the decider, recovering panics and mapping failures
// to DecideNone.
func (o *Orchestrator) decideSafely(companion *Combatant) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("companion decider panicked", zap.Any("panic", r))
			d = Decision{Type: DecideNone}
		}
	}()
	if o.decider == nil {
		return Decision{Type: DecideNone}
	}
	decision, err := o.decider.Decide(o.state, companion)
	if err != nil {
		o.log.Warn("companion decision failed", zap.Error(err))
		return Decision{Type: DecideNone}
	}
	return decision
}

// resolveDecisionLocked turns a companion decision into an ActionResult.
func (o *Orchestrator) resolveDecisionLocked(companion *Combatant, d Decision) ActionResult {
	var result ActionResult
	switch d.Type {
	case DecideAttack:
		target := o.state.ByID(d.TargetID)
		if d.Attack == nil || target == nil {
			result.say(CategoryInfo, fmt.Sprintf("%s hesitates, finding no opening.", companion.Name))
			return result
		}
		acBonus := effect.ACBonus(o.state.EffectsFor(target.ID))
		return ResolveEntityAttack(companion, *d.Attack, target, acBonus, o.src)

	case DecideSpell, DecideHeal:
		target := o.state.ByID(d.TargetID)
		if d.Spell == nil || target == nil {
			result.say(CategoryInfo, fmt.Sprintf("%s hesitates, finding no opening.", companion.Name))
			return result
		}
		result = ResolveSpellAttack(companion, *d.Spell, target, effect.ACBonus(o.state.EffectsFor(target.ID)), o.src)
		if result.Success && companion.Spellcasting != nil {
			if err := companion.Spellcasting.ConsumeSlot(d.SpellSlot); err != nil {
				o.log.Warn("companion slot consumption failed",
					zap.String("spell", d.Spell.Name), zap.Error(err))
			}
		}
		return result

	case DecideProtect:
		targetID := d.TargetID
		if targetID == "" {
			targetID = companion.ID
		}
		target := o.state.ByID(targetID)
		if target == nil {
			result.say(CategoryInfo, fmt.Sprintf("%s hesitates, finding no opening.", companion.Name))
			return result
		}
		result.Success = true
		result.Effects = append(result.Effects, EffectEntry{
			Kind: effect.Protect, TargetIDs: []string{target.ID}, SourceID: companion.ID, Rounds: 2,
		})
		result.say(CategorySupport, fmt.Sprintf("%s shields %s from harm.", companion.Name, target.Name))
		return result

	case DecideTaunt:
		result.Success = true
		result.Effects = append(result.Effects, EffectEntry{
			Kind: effect.Taunt, TargetIDs: []string{companion.ID}, SourceID: companion.ID, Rounds: 2,
		})
		result.say(CategorySupport, fmt.Sprintf("%s taunts the enemies, drawing their ire.", companion.Name))
		return result

	default:
		result.say(CategoryInfo, fmt.Sprintf("%s takes no action.", companion.Name))
		return result
	}
}

// enemyTurnLocked resolves one enemy turn: a uniformly random attack against
// the highest-priority living target.
func (o *Orchestrator) enemyTurnLocked() {
	enemy := o.state.Current()

	if len(enemy.Attacks) == 0 {
		o.state.Emit(Message{
			Category: CategoryInfo,
			Text:     fmt.Sprintf("%s circles warily, with no attack available.", enemy.Name),
		})
		o.finishTurnLocked()
		return
	}

	attack := enemy.Attacks[o.src.Intn(len(enemy.Attacks))]
	target := o.pickEnemyTargetLocked()
	if target == nil {
		o.state.Emit(Message{
			Category: CategoryInfo,
			Text:     fmt.Sprintf("%s finds nobody left to fight.", enemy.Name),
		})
		o.finishTurnLocked()
		return
	}

	acBonus := effect.ACBonus(o.state.EffectsFor(target.ID))
	result := ResolveEntityAttack(enemy, attack, target, acBonus, o.src)
	o.applyLocked(result)
	o.finishTurnLocked()
}

// pickEnemyTargetLocked picks the enemy's target: an active taunt wins,
// otherwise priority is Player > Companion > first available.
func (o *Orchestrator) pickEnemyTargetLocked() *Combatant {
	if tauntID := effect.TauntSource(o.state.EffectSets(), func(id string) bool {
		c := o.state.ByID(id)
		return c != nil && !c.IsDefeated()
	}); tauntID != "" {
		return o.state.ByID(tauntID)
	}

	if p := o.state.Player(); p != nil && !p.IsDefeated() {
		return p
	}
	if c := o.state.Companion(); c != nil && !c.IsDefeated() {
		return c
	}
	for _, e := range o.state.Order() {
		c := e.Combatant
		if c.Kind != KindEnemy && !c.IsDefeated() {
			return c
		}
	}
	return nil
}

// applyLocked applies an ActionResult's intents to the combat state: damage,
// healing, effects, and narrative messages. Recoverable data problems have
// already been degraded by the resolver.
func (o *Orchestrator) applyLocked(result ActionResult) {
	if result.DataErr != nil {
		o.log.Warn("action resolved with degraded data", zap.Error(result.DataErr))
	}
	for _, m := range result.Messages {
		o.state.Emit(m)
	}
	for _, d := range result.Damage {
		if target := o.state.ByID(d.TargetID); target != nil {
			target.ApplyDamage(d.Amount)
			if target.IsDefeated() {
				o.state.Emit(Message{
					Category: CategoryInfo,
					Text:     fmt.Sprintf("%s falls!", target.Name),
				})
			}
		}
	}
	for _, h := range result.Healing {
		if target := o.state.ByID(h.TargetID); target != nil {
			target.ApplyHealing(h.Amount)
		}
	}
	for _, e := range result.Effects {
		for _, id := range e.TargetIDs {
			if err := o.state.EffectsFor(id).Apply(e.Kind, e.SourceID, e.Rounds); err != nil {
				o.log.Warn("effect application failed", zap.Error(err))
			}
		}
	}
}

// finishTurnLocked runs the post-action bookkeeping: outcome evaluation,
// end-of-action checkpoint, effect ticking, and the paced turn advance.
func (o *Orchestrator) finishTurnLocked() {
	o.checkpointCurrentLocked()

	if verdict := o.state.Evaluate(); verdict != Continuing {
		o.concludeLocked(verdict)
		return
	}

	// A zero delay advances inline while the lock is already held; a real
	// delay lets narrative render first, and the epoch scheduler guarantees
	// the continuation dies with the encounter.
	if o.delay <= 0 {
		o.advanceLocked()
		return
	}
	o.sched.Schedule(o.delay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.advanceLocked()
	})
}

// advanceLocked steps the turn sequencer and acts on the phase it settles on.
// Caller must hold o.mu. A continuation that passed the epoch check before
// Teardown but acquired the lock after Abort lands here and must not run.
func (o *Orchestrator) advanceLocked() {
	if o.aborted || o.state.Phase().Terminal() {
		return
	}
	if _, err := o.state.AdvanceTurn(); err != nil {
		o.concludeLocked(o.state.Evaluate())
		return
	}
	switch o.state.Phase() {
	case PhasePlayerTurn:
		if o.onPlayerTurn != nil {
			o.onPlayerTurn(o.state.Current())
		}
	case PhaseCompanionTurn:
		o.companionTurnLocked()
	case PhaseEnemyTurn:
		o.enemyTurnLocked()
	}
}

// concludeLocked finishes the encounter with the given verdict and writes
// final state back to the character store.
func (o *Orchestrator) concludeLocked(verdict Outcome) {
	if verdict == Continuing {
		verdict = Defeat
	}
	o.state.Finish(verdict)
	o.sched.Teardown()
	o.writeBackLocked()
	o.doneOnce.Do(func() { close(o.done) })
}

// checkpointCurrentLocked persists the acting combatant's state at the end
// of its action.
func (o *Orchestrator) checkpointCurrentLocked() {
	if o.checkpoint == nil {
		return
	}
	c := o.state.Current()
	if c.SheetID == 0 {
		return
	}
	if err := o.checkpoint.SaveCombatant(o.ctxOrBackground(), c); err != nil {
		o.log.Error("end-of-action checkpoint failed",
			zap.String("combatant", c.ID), zap.Error(err))
	}
}

// writeBackLocked persists every sheet-backed combatant at the end of the
// encounter. Partial mid-combat state never leaves the engine outside the
// defined checkpoints.
func (o *Orchestrator) writeBackLocked() {
	if o.checkpoint == nil {
		return
	}
	for _, e := range o.state.Order() {
		c := e.Combatant
		if c.SheetID == 0 {
			continue
		}
		if err := o.checkpoint.SaveCombatant(o.ctxOrBackground(), c); err != nil {
			o.log.Error("end-of-encounter write-back failed",
				zap.String("combatant", c.ID), zap.Error(err))
		}
	}
}

func (o *Orchestrator) ctxOrBackground() context.Context {
	if o.ctx != nil {
		return o.ctx
	}
	return context.Background()
}
