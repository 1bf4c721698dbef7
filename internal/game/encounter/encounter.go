// Package encounter builds the pieces of a new combat encounter: enemy
// spawning from bestiary templates, initiative rolling, and default
// battlefield placement.
package encounter

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/AzhaqCom/theone/internal/game/bestiary"
	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/combat"
	"github.com/AzhaqCom/theone/internal/game/dice"
	"github.com/AzhaqCom/theone/internal/game/grid"
)

// ErrEmptySpec is returned when an encounter spec names zero enemy groups.
var ErrEmptySpec = errors.New("encounter: spec must contain at least one enemy group")

// Group requests Count instances of one enemy type.
type Group struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// Spec describes the enemy composition of one encounter.
type Spec struct {
	Groups []Group `yaml:"groups"`
}

// DefaultGridSize is the standard battlefield used when the caller does not
// override dimensions.
var DefaultGridSize = grid.Size{Width: 8, Height: 6}

// SpawnEnemies expands an encounter spec into concrete enemy combatants using
// the template registry.
//
// Unknown type keys are skipped with a logged warning rather than aborting
// the encounter. Instance ids follow {type}_{groupIndex}_{indexInGroup} with
// 1-based indices; display names carry a numeric suffix only when the group
// spawns more than one instance.
//
// Precondition: registry must not be nil.
// Postcondition: Returns ErrEmptySpec when spec has no groups; otherwise one
// combatant per resolvable instance, in group order.
func SpawnEnemies(spec Spec, registry *bestiary.Registry, logger *zap.Logger) ([]*combat.Combatant, error) {
	if len(spec.Groups) == 0 {
		return nil, ErrEmptySpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var enemies []*combat.Combatant
	for g, group := range spec.Groups {
		tmpl, ok := registry.Template(group.Type)
		if !ok {
			logger.Warn("skipping unknown enemy type",
				zap.String("type", group.Type), zap.Int("group", g+1))
			continue
		}
		for i := 1; i <= group.Count; i++ {
			name := tmpl.Name
			if group.Count > 1 {
				name = fmt.Sprintf("%s %d", tmpl.Name, i)
			}
			enemies = append(enemies, &combat.Combatant{
				ID:         fmt.Sprintf("%s_%d_%d", group.Type, g+1, i),
				Name:       name,
				Kind:       combat.KindEnemy,
				CurrentHP:  tmpl.MaxHP,
				MaxHP:      tmpl.MaxHP,
				ArmorClass: tmpl.AC,
				Level:      tmpl.Level,
				Abilities:  tmpl.Abilities,
				Attacks:    append([]character.Attack(nil), tmpl.Attacks...),
				TemplateID: tmpl.ID,
			})
		}
	}
	return enemies, nil
}

// kindRank orders combatant kinds for initiative tie-breaking. Lower wins.
var kindRank = map[combat.Kind]int{
	combat.KindPlayer:    0,
	combat.KindCompanion: 1,
	combat.KindEnemy:     2,
}

// RollInitiative rolls d20 + dexterity modifier for every combatant and
// returns the descending initiative order.
//
// Ties break by fixed priority Player > Companion > Enemy, then by stable
// input order. Rolls are consumed in input order (player, companion, enemies)
// so a seeded source reproduces the same order.
//
// Precondition: player must not be nil; companion may be nil.
// Postcondition: The returned order is a permutation of all inputs; its
// ordering never changes for the encounter's lifetime.
func RollInitiative(player, companion *combat.Combatant, enemies []*combat.Combatant, src dice.Source) (combat.TurnOrder, error) {
	if player == nil {
		return nil, combat.ErrNoPlayer
	}
	if player.Abilities.Dexterity <= 0 {
		return nil, fmt.Errorf("%w: player has no ability scores", combat.ErrNoPlayer)
	}

	roll := func(c *combat.Combatant) combat.TurnEntry {
		mod := 0
		if c.Abilities.Dexterity > 0 {
			mod = character.Modifier(c.Abilities.Dexterity)
		}
		return combat.TurnEntry{Combatant: c, Initiative: dice.D20(src) + mod}
	}

	order := combat.TurnOrder{roll(player)}
	if companion != nil {
		order = append(order, roll(companion))
	}
	for _, e := range enemies {
		order = append(order, roll(e))
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Initiative != order[j].Initiative {
			return order[i].Initiative > order[j].Initiative
		}
		return kindRank[order[i].Combatant.Kind] < kindRank[order[j].Combatant.Kind]
	})
	return order, nil
}

// PlaceCombatants assigns battlefield tiles: player front-left, companion
// behind the player, enemies clustered in the right two-fifths of the grid
// and wrapped into rows. Entries in custom override the default per
// combatant; an out-of-bounds custom entry falls back to the default for
// that combatant only.
//
// Precondition: player must not be nil; size must be positive (zero value
// selects DefaultGridSize).
// Postcondition: Every input combatant has an in-bounds position.
func PlaceCombatants(player, companion *combat.Combatant, enemies []*combat.Combatant, custom map[string]grid.Position, size grid.Size) map[string]grid.Position {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultGridSize
	}
	positions := make(map[string]grid.Position)

	place := func(id string, fallback grid.Position) {
		if p, ok := custom[id]; ok && size.Contains(p) {
			positions[id] = p
			return
		}
		positions[id] = fallback
	}

	midY := size.Height / 2
	place(player.ID, grid.Position{X: 1, Y: midY})
	if companion != nil {
		place(companion.ID, grid.Position{X: 0, Y: midY})
	}

	cols := size.Width * 2 / 5
	if cols < 1 {
		cols = 1
	}
	startX := size.Width - cols
	for i, e := range enemies {
		place(e.ID, grid.Position{
			X: startX + i%cols,
			Y: (1 + i/cols) % size.Height,
		})
	}
	return positions
}
