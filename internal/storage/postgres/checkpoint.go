package postgres

import (
	"context"

	"github.com/AzhaqCom/theone/internal/game/combat"
)

// SheetCheckpointer adapts the sheet repository to the combat engine's
// Checkpointer contract: the orchestrator hands it live combatants at the
// defined checkpoints and it writes HP plus remaining spell slots back to
// their persistent sheets.
type SheetCheckpointer struct {
	repo *SheetRepository
}

// NewSheetCheckpointer creates a checkpointer over the given repository.
//
// Precondition: repo must not be nil.
func NewSheetCheckpointer(repo *SheetRepository) *SheetCheckpointer {
	return &SheetCheckpointer{repo: repo}
}

// SaveCombatant writes a combatant's current HP and spell slots to its sheet.
// Combatants without a sheet (enemies) are ignored.
//
// Postcondition: On nil error the stored sheet reflects the combatant's
// CurrentHP and remaining slots.
func (c *SheetCheckpointer) SaveCombatant(ctx context.Context, cb *combat.Combatant) error {
	if cb.SheetID == 0 {
		return nil
	}
	var slots map[int]int
	if cb.Spellcasting != nil {
		slots = cb.Spellcasting.Slots
	}
	return c.repo.SaveCombatState(ctx, cb.SheetID, cb.CurrentHP, slots)
}
