// Package scenario provides named modifier bundles ("Regulatory Clampdown",
// "Board Intervention", "Aggressive Poaching") plus YAML-defined custom
// scenarios for classroom exercises.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
)

// Scenario bundles a modifier set with display metadata. Zero-valued capacity
// overrides leave the run configuration untouched.
type Scenario struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description" json:"description"`
	Modifiers   engine.Modifiers `yaml:"modifiers" json:"modifiers"`

	MaxCapacityA int64 `yaml:"max_capacity_a,omitempty" json:"max_capacity_a,omitempty"`
	MaxCapacityB int64 `yaml:"max_capacity_b,omitempty" json:"max_capacity_b,omitempty"`
}

// Apply overlays the scenario on a run configuration.
func (s Scenario) Apply(cfg engine.Config) engine.Config {
	cfg.Modifiers = s.Modifiers
	if s.MaxCapacityA > 0 {
		cfg.MaxCapacityA = s.MaxCapacityA
	}
	if s.MaxCapacityB > 0 {
		cfg.MaxCapacityB = s.MaxCapacityB
	}
	return cfg
}

// Builtins are the presets carried over from the classroom tool.
func Builtins() []Scenario {
	return []Scenario{
		{
			Name:        "Regulatory Clampdown",
			Description: "Customs inspections add uniform noise to both terminals' gains.",
			Modifiers:   engine.Modifiers{ApplyNoise: true},
		},
		{
			Name:        "Board Intervention",
			Description: "The board forces Terminal A to commit publicly; B reacts as follower.",
			Modifiers:   engine.Modifiers{StackelbergLeader: true},
		},
		{
			Name:        "Aggressive Poaching",
			Description: "A tariff war decays raw gains toward marginal cost (Bertrand pricing).",
			Modifiers:   engine.Modifiers{BertrandMode: true},
		},
	}
}

// Library resolves scenarios by name, merging built-ins with YAML files from
// an optional directory. File scenarios shadow built-ins of the same name.
type Library struct {
	dir string

	mu    sync.RWMutex
	cache map[string]Scenario
}

// NewLibrary creates a scenario library. dir may be empty for built-ins only.
func NewLibrary(dir string) *Library {
	l := &Library{dir: dir, cache: make(map[string]Scenario)}
	for _, s := range Builtins() {
		l.cache[s.Name] = s
	}
	return l
}

// LoadDir reads every *.yaml scenario file in the library directory.
func (l *Library) LoadDir() error {
	if l.dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(l.dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("scan scenario dir: %w", err)
	}
	for _, path := range matches {
		s, err := LoadFile(path)
		if err != nil {
			return err
		}
		l.mu.Lock()
		l.cache[s.Name] = s
		l.mu.Unlock()
	}
	return nil
}

// Get resolves a scenario by name.
func (l *Library) Get(name string) (Scenario, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.cache[name]
	return s, ok
}

// List returns all known scenarios sorted by name.
func (l *Library) List() []Scenario {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Scenario, 0, len(l.cache))
	for _, s := range l.cache {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadFile parses a single YAML scenario file.
func LoadFile(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return Scenario{}, fmt.Errorf("scenario %s: missing name", path)
	}
	return s, nil
}
