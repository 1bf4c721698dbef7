package combat

import "github.com/AzhaqCom/theone/internal/game/effect"

// DamageEntry is one intended damage application.
type DamageEntry struct {
	TargetID string
	Amount   int
}

// HealingEntry is one intended healing application.
type HealingEntry struct {
	TargetID string
	Amount   int
}

// EffectEntry is one intended effect application.
type EffectEntry struct {
	Kind      effect.Kind
	TargetIDs []string
	SourceID  string
	Rounds    int
}

// ActionResult is the outcome record of one resolved action. The resolver
// returns intents only; the caller applies HP mutations and effect changes so
// store write-back stays centralised and roll outcomes stay testable.
type ActionResult struct {
	Success  bool
	Damage   []DamageEntry
	Healing  []HealingEntry
	Messages []Message
	Effects  []EffectEntry
	// DataErr carries a recoverable data error encountered during resolution
	// (missing stat, bad damage descriptor); the action still resolved with
	// the documented fallback. Callers log or assert on it.
	DataErr error
}

// say appends a narrative message to the result.
func (r *ActionResult) say(category Category, text string) {
	r.Messages = append(r.Messages, Message{Text: text, Category: category})
}

// TotalDamage sums all damage entries.
func (r ActionResult) TotalDamage() int {
	total := 0
	for _, d := range r.Damage {
		total += d.Amount
	}
	return total
}
