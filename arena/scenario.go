package arena

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sergev/wormscript/program"
)

// Scenario is the starting position of a game, read from YAML.
type Scenario struct {
	Path  string          `yaml:"-"`
	Worms []WormPlacement `yaml:"worms"`
	Food  []FoodPlacement `yaml:"food"`
}

// WormPlacement places one worm. Its program is either the file named by
// Script, relative to the scenario, or the inline Source.
type WormPlacement struct {
	Name      string  `yaml:"name"`
	Team      string  `yaml:"team"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Direction float64 `yaml:"direction"`
	Script    string  `yaml:"script"`
	Source    string  `yaml:"source"`
}

// FoodPlacement places one food ration.
type FoodPlacement struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ValidationError aggregates scenario validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "scenario: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("scenario validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadScenario parses and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return nil, fmt.Errorf("scenario: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", absPath, err)
	}
	defer file.Close()

	s, err := DecodeScenario(file)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", absPath, err)
	}
	s.Path = absPath
	return s, nil
}

// DecodeScenario parses and validates a scenario. Unknown fields are errors.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	var issues []string
	if len(s.Worms) == 0 {
		issues = append(issues, "no worms")
	}
	seen := make(map[string]bool)
	for i, w := range s.Worms {
		switch {
		case w.Name == "":
			issues = append(issues, fmt.Sprintf("worm %d has no name", i+1))
		case seen[w.Name]:
			issues = append(issues, fmt.Sprintf("duplicate worm %s", w.Name))
		}
		seen[w.Name] = true
		if w.Script != "" && w.Source != "" {
			issues = append(issues, fmt.Sprintf("worm %s has both script and source", w.Name))
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// source returns the program text of w, reading script files relative to
// the scenario directory.
func (s *Scenario) source(w WormPlacement) (string, error) {
	if w.Script == "" {
		return w.Source, nil
	}
	path := w.Script
	if !filepath.IsAbs(path) && s.Path != "" {
		path = filepath.Join(filepath.Dir(s.Path), path)
	}
	return program.ReadSource(path)
}

// NewGame builds the world of the scenario under cfg and starts a game.
func (s *Scenario) NewGame(cfg *Config, opts ...GameOption) (*Game, error) {
	world := NewWorld(cfg)
	for _, w := range s.Worms {
		if _, err := world.AddWorm(w.Name, w.Team, w.X, w.Y, w.Direction); err != nil {
			return nil, err
		}
	}
	for _, f := range s.Food {
		if _, err := world.AddFood(f.X, f.Y); err != nil {
			return nil, err
		}
	}
	game, err := NewGame(world, opts...)
	if err != nil {
		return nil, err
	}
	for i, w := range s.Worms {
		src, err := s.source(w)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if err := game.SetScript(world.worms[i], src); err != nil {
			return nil, err
		}
	}
	return game, nil
}
