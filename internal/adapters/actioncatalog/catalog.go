// Package actioncatalog loads the action catalogue from YAML.
package actioncatalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/adaptiverag/internal/domain/actions"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

//go:embed actions.yaml
var builtin []byte

// Catalog implements ports.ActionCatalog.
type Catalog struct {
	actions []actions.Action
}

type file struct {
	Actions []actions.Action `yaml:"actions"`
}

// Default returns the built-in catalogue.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in action catalogue: %v", err))
	}
	return c
}

// Load reads a catalogue file. An empty path gives the built-in catalogue.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading action catalogue: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debugf("loaded %d actions from %s", len(c.actions), path)
	return c, nil
}

// Parse decodes and validates a YAML catalogue. Every action needs a
// unique id and a name.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing action catalogue: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(f.Actions))
	for i, a := range f.Actions {
		switch {
		case a.ID == "":
			errs = append(errs, fmt.Errorf("action %d: missing id", i))
		case seen[a.ID]:
			errs = append(errs, fmt.Errorf("action %s: duplicate id", a.ID))
		case a.Name == "":
			errs = append(errs, fmt.Errorf("action %s: missing name", a.ID))
		}
		seen[a.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Catalog{actions: f.Actions}, nil
}

// Actions returns the catalogue in file order.
func (c *Catalog) Actions() []actions.Action {
	return c.actions
}
