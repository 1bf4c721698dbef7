package bestiary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EquipmentBonus holds flat combat bonuses granted by an equipped item.
type EquipmentBonus struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	AttackBonus int    `yaml:"attack_bonus"`
	DamageBonus int    `yaml:"damage_bonus"`
	ACBonus     int    `yaml:"ac_bonus"`
}

// Registry indexes enemy templates and equipment bonuses by key.
//
// Invariant: every stored template has passed Validate.
type Registry struct {
	templates map[string]*Template
	equipment map[string]EquipmentBonus
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
		equipment: make(map[string]EquipmentBonus),
	}
}

// Register adds a template, replacing any existing entry with the same ID.
//
// Precondition: tmpl must not be nil.
// Postcondition: Returns an error iff tmpl fails Validate; on success,
// Template(tmpl.ID) returns tmpl.
func (r *Registry) Register(tmpl *Template) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}
	r.templates[tmpl.ID] = tmpl
	return nil
}

// Template returns the template registered under key.
//
// Postcondition: Returns (template, true) if found, or (nil, false) otherwise.
func (r *Registry) Template(key string) (*Template, bool) {
	t, ok := r.templates[key]
	return t, ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// RegisterEquipment adds an equipment bonus entry.
func (r *Registry) RegisterEquipment(eq EquipmentBonus) error {
	if eq.ID == "" {
		return fmt.Errorf("equipment bonus: id must not be empty")
	}
	r.equipment[eq.ID] = eq
	return nil
}

// Equipment returns the equipment bonus registered under key.
func (r *Registry) Equipment(key string) (EquipmentBonus, bool) {
	eq, ok := r.equipment[key]
	return eq, ok
}

// LoadDir populates the registry with every template found in dir.
//
// Postcondition: On success every template in dir is registered; on error the
// registry is left unmodified.
func (r *Registry) LoadDir(dir string) error {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return err
	}
	for _, tmpl := range templates {
		r.templates[tmpl.ID] = tmpl
	}
	return nil
}

// LoadEquipmentDir populates equipment bonuses from *.yaml files in dir.
// A missing directory is not an error: equipment data is optional content.
func (r *Registry) LoadEquipmentDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading equipment dir %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var eq EquipmentBonus
		if err := yaml.Unmarshal(data, &eq); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := r.RegisterEquipment(eq); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}
