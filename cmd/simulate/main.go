// Package main runs one scripted combat encounter end to end: content and
// config loading, encounter setup, and the full orchestrated round loop with
// a simple scripted player policy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AzhaqCom/theone/internal/config"
	"github.com/AzhaqCom/theone/internal/game/bestiary"
	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/combat"
	"github.com/AzhaqCom/theone/internal/game/companion"
	"github.com/AzhaqCom/theone/internal/game/dice"
	"github.com/AzhaqCom/theone/internal/game/encounter"
	"github.com/AzhaqCom/theone/internal/game/grid"
	"github.com/AzhaqCom/theone/internal/observability"
	"github.com/AzhaqCom/theone/internal/storage/postgres"
)

// consoleSink prints narrative messages as they are emitted.
type consoleSink struct{}

func (consoleSink) Append(m combat.Message) {
	fmt.Printf("[%s] %s\n", m.Category, m.Text)
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	enemySpec := flag.String("enemies", "goblin:2", "enemy groups as type:count[,type:count...]")
	seed := flag.Int64("seed", 0, "dice seed (0 = cryptographic source)")
	persist := flag.Bool("persist", false, "load and write back character sheets via postgres")
	flag.Parse()

	if err := run(*configPath, *enemySpec, *seed, *persist); err != nil {
		log.Fatalf("simulate: %v", err)
	}
}

func run(configPath, enemySpec string, seed int64, persist bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := bestiary.NewRegistry()
	if err := registry.LoadDir(cfg.Content.EnemiesDir); err != nil {
		return err
	}
	if err := registry.LoadEquipmentDir(cfg.Content.EquipmentDir); err != nil {
		return err
	}
	logger.Info("content loaded", zap.Int("templates", registry.Len()))

	spec, err := parseEnemySpec(enemySpec)
	if err != nil {
		return err
	}

	var src dice.Source
	if seed != 0 {
		src = dice.NewSeededSource(seed)
		logger.Info("using seeded dice source", zap.Int64("seed", seed))
	} else {
		src = dice.NewCryptoSource()
	}

	ctx := context.Background()

	playerSheet, companionSheet := sampleParty()
	var checkpoint combat.Checkpointer
	if persist {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo := postgres.NewSheetRepository(pool.DB())
		if playerSheet, err = loadOrCreate(ctx, repo, playerSheet); err != nil {
			return err
		}
		if companionSheet, err = loadOrCreate(ctx, repo, companionSheet); err != nil {
			return err
		}
		checkpoint = postgres.NewSheetCheckpointer(repo)
	}

	player := combat.FromSheet(combat.KindPlayer, "player_"+strings.ToLower(playerSheet.Name), playerSheet)
	ally := combat.FromSheet(combat.KindCompanion, "companion_"+strings.ToLower(companionSheet.Name), companionSheet)

	enemies, err := encounter.SpawnEnemies(spec, registry, logger)
	if err != nil {
		return err
	}
	order, err := encounter.RollInitiative(player, ally, enemies, src)
	if err != nil {
		return err
	}
	positions := encounter.PlaceCombatants(player, ally, enemies, nil,
		grid.Size{Width: cfg.Combat.GridWidth, Height: cfg.Combat.GridHeight})

	state, err := combat.NewState(order, positions)
	if err != nil {
		return err
	}

	playerTurns := make(chan *combat.Combatant, 1)
	orch, err := combat.NewOrchestrator(combat.OrchestratorConfig{
		State:        state,
		Source:       src,
		Logger:       logger,
		Decider:      companion.NewDecider(sampleSpellbook(), cfg.Combat.LowHPThreshold),
		Checkpoint:   checkpoint,
		Sink:         consoleSink{},
		TurnDelay:    cfg.Combat.TurnDelay,
		OnPlayerTurn: func(c *combat.Combatant) { playerTurns <- c },
	})
	if err != nil {
		return err
	}

	logger.Info("encounter starting",
		zap.String("encounter", state.EncounterID),
		zap.Int("combatants", len(order)))
	if err := orch.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case p := <-playerTurns:
			if err := submitPlayerAction(orch, p); err != nil {
				logger.Warn("player action rejected", zap.Error(err))
			}
		case <-orch.Done():
			logger.Info("encounter finished", zap.String("phase", string(orch.Phase())))
			return nil
		}
	}
}

// submitPlayerAction is the scripted player policy: attack the first living
// enemy with the first attack on the sheet.
func submitPlayerAction(orch *combat.Orchestrator, player *combat.Combatant) error {
	if len(player.Attacks) == 0 {
		return errors.New("player has no attacks")
	}
	var target *combat.Combatant
	for _, e := range orch.State().Enemies() {
		if !e.IsDefeated() {
			target = e
			break
		}
	}
	if target == nil {
		return errors.New("no living enemy to attack")
	}
	return orch.SubmitPlayerAction(combat.PlayerAction{
		Attack:   &player.Attacks[0],
		TargetID: target.ID,
	})
}

// parseEnemySpec turns "goblin:2,ogre:1" into an encounter spec.
func parseEnemySpec(raw string) (encounter.Spec, error) {
	var spec encounter.Spec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, countStr, found := strings.Cut(part, ":")
		count := 1
		if found {
			n, err := strconv.Atoi(countStr)
			if err != nil || n < 1 {
				return encounter.Spec{}, fmt.Errorf("invalid enemy count in %q", part)
			}
			count = n
		}
		spec.Groups = append(spec.Groups, encounter.Group{Type: key, Count: count})
	}
	return spec, nil
}

// loadOrCreate fetches a sheet by name, creating it on first run.
func loadOrCreate(ctx context.Context, repo *postgres.SheetRepository, s *character.Sheet) (*character.Sheet, error) {
	existing, err := repo.GetByName(ctx, s.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, postgres.ErrSheetNotFound) {
		return nil, err
	}
	return repo.Create(ctx, s)
}

// sampleParty returns the built-in demo sheets used when no store is wired.
func sampleParty() (*character.Sheet, *character.Sheet) {
	player := &character.Sheet{
		Name:       "Theron",
		Level:      3,
		MaxHP:      28,
		CurrentHP:  28,
		ArmorClass: 16,
		Abilities: character.AbilityScores{
			Strength: 16, Dexterity: 12, Constitution: 14,
			Intelligence: 10, Wisdom: 10, Charisma: 12,
		},
		Attacks: []character.Attack{
			{Name: "Longsword", Damage: "1d8+3", Range: character.Melee},
			{Name: "Handaxe", Damage: "1d6+3", Range: character.Ranged, Stat: character.Strength},
		},
	}
	ally := &character.Sheet{
		Name:       "Elara",
		Level:      3,
		MaxHP:      21,
		CurrentHP:  21,
		ArmorClass: 14,
		Abilities: character.AbilityScores{
			Strength: 10, Dexterity: 14, Constitution: 12,
			Intelligence: 10, Wisdom: 16, Charisma: 12,
		},
		Attacks: []character.Attack{
			{Name: "Mace", Damage: "1d6", Range: character.Melee},
		},
		Spellcasting: &character.Spellcasting{
			Ability:  character.Wisdom,
			Slots:    map[int]int{1: 3},
			Known:    map[string]bool{"Cure Wounds": true, "Guiding Bolt": true},
			Prepared: map[string]bool{"Cure Wounds": true, "Guiding Bolt": true},
			Cantrips: map[string]bool{"Sacred Flame": true},
		},
	}
	return player, ally
}

// sampleSpellbook defines the spells the demo companion can resolve.
func sampleSpellbook() map[string]character.Spell {
	return map[string]character.Spell{
		"Cure Wounds":  {Name: "Cure Wounds", Level: 1, Healing: "1d8", Bonus: 3, RangeTiles: 1},
		"Guiding Bolt": {Name: "Guiding Bolt", Level: 1, Damage: "4d6", RequiresAttackRoll: true, RangeTiles: 6},
		"Sacred Flame": {Name: "Sacred Flame", Level: 0, Damage: "1d8", RangeTiles: 6},
	}
}
