package combat

import (
	"errors"
	"fmt"
)

// Fatal configuration errors abort encounter initialization entirely.
var (
	// ErrNoPlayer is returned when an encounter is built without a player.
	ErrNoPlayer = errors.New("combat: encounter requires a player combatant")
	// ErrNoLivingCombatants is returned by the turn sequencer when a full
	// pass over the turn order finds nobody left standing; the caller must
	// force a victory/defeat decision via the outcome evaluator.
	ErrNoLivingCombatants = errors.New("combat: no living combatants in turn order")
)

// DataErrorKind classifies a recoverable data error.
type DataErrorKind string

// Recoverable data error kinds. These never abort combat: the operation that
// detects one returns a safe fallback value alongside the error so callers
// can log it and continue.
const (
	// MissingStat marks an absent or out-of-range ability score.
	MissingStat DataErrorKind = "missing-stat"
	// MissingSpellcasting marks a spell bonus computed for a non-caster.
	MissingSpellcasting DataErrorKind = "missing-spellcasting"
	// BadDamageDescriptor marks an unparseable damage string.
	BadDamageDescriptor DataErrorKind = "bad-damage-descriptor"
)

// DataError is a recoverable data problem encountered during resolution.
// The resolution proceeds with a documented fallback; the error exists so
// callers and tests can assert on the path taken instead of scraping logs.
type DataError struct {
	Kind DataErrorKind
	msg  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("combat: %s: %s", e.Kind, e.msg)
}

// NewDataError creates a recoverable DataError of the given kind.
func NewDataError(kind DataErrorKind, format string, args ...any) *DataError {
	return &DataError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// IsRecoverable reports whether err is (or wraps) a recoverable DataError.
func IsRecoverable(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
