// Package bestiary provides enemy template definitions and the lookup
// registry used to spawn encounter enemies.
package bestiary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AzhaqCom/theone/internal/game/character"
	"github.com/AzhaqCom/theone/internal/game/dice"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Level       int                     `yaml:"level"`
	MaxHP       int                     `yaml:"max_hp"`
	AC          int                     `yaml:"ac"`
	Abilities   character.AbilityScores `yaml:"abilities"`
	Attacks     []character.Attack      `yaml:"attacks"`
	// ChallengeRating is informational, used for encounter budgeting.
	ChallengeRating float64 `yaml:"challenge_rating"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, AC >= 1, and every attack damage descriptor parses.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("enemy template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("enemy template %q: max_hp must be >= 1", t.ID)
	}
	if t.AC < 1 {
		return fmt.Errorf("enemy template %q: ac must be >= 1", t.ID)
	}
	for _, a := range t.Attacks {
		if a.Name == "" {
			return fmt.Errorf("enemy template %q: attack name must not be empty", t.ID)
		}
		if _, err := dice.Parse(a.Damage); err != nil {
			return fmt.Errorf("enemy template %q attack %q: %w", t.ID, a.Name, err)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
