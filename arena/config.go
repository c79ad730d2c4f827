package arena

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// Config holds the rules of the arena. Costs are in action points, lengths
// in meters and angles in radians.
type Config struct {
	World   WorldConfig
	Worm    WormConfig
	Costs   CostConfig
	Weapons []WeaponConfig
	Game    GameConfig
}

type WorldConfig struct {
	Width  float64
	Height float64
}

type WormConfig struct {
	Radius          float64
	MaxActionPoints float64
	MaxHitPoints    float64
	// TurnHitPoints is restored to a worm at the start of each of its turns.
	TurnHitPoints float64
	JumpDistance  float64
	// FallDamage is the hit point loss per meter fallen.
	FallDamage float64
	FoodRadius float64
	FoodHeal   float64
}

type CostConfig struct {
	// TurnFullCircle is the cost of turning by 2π; smaller turns cost
	// proportionally, rounded up.
	TurnFullCircle float64
	MoveHorizontal float64
	MoveVertical   float64
}

type WeaponConfig struct {
	Name   string
	Cost   float64
	Damage float64
	Range  float64
	// Yield makes the damage proportional to the shot's yield (0-100).
	Yield bool
}

type GameConfig struct {
	MaxRounds int
	// MaxActionsPerTurn ends a turn whose program keeps acting without
	// running out of action points.
	MaxActionsPerTurn int
	StepLimit         int
	ScriptCacheSize   int
}

// DefaultConfig is the configuration used when no file is given.
var DefaultConfig = Config{
	World: WorldConfig{
		Width:  40,
		Height: 20,
	},
	Worm: WormConfig{
		Radius:          0.5,
		MaxActionPoints: 100,
		MaxHitPoints:    100,
		TurnHitPoints:   10,
		JumpDistance:    4,
		FallDamage:      3,
		FoodRadius:      0.2,
		FoodHeal:        10,
	},
	Costs: CostConfig{
		TurnFullCircle: 60,
		MoveHorizontal: 1,
		MoveVertical:   4,
	},
	Weapons: []WeaponConfig{
		{Name: "Rifle", Cost: 10, Damage: 20, Range: 30},
		{Name: "Bazooka", Cost: 50, Damage: 80, Range: 15, Yield: true},
	},
	Game: GameConfig{
		MaxRounds:         20,
		MaxActionsPerTurn: 1000,
		StepLimit:         1000000,
		ScriptCacheSize:   64,
	},
}

// NewConfig returns a copy of DefaultConfig.
func NewConfig() *Config {
	cfg := DefaultConfig
	cfg.Weapons = append([]WeaponConfig(nil), DefaultConfig.Weapons...)
	return &cfg
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadConfig reads a TOML file over the values already in cfg.
func LoadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = DecodeConfig(bufio.NewReader(f), cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// DecodeConfig decodes TOML from r into cfg.
func DecodeConfig(r io.Reader, cfg *Config) error {
	return tomlSettings.NewDecoder(r).Decode(cfg)
}

// MarshalConfig renders cfg as TOML.
func MarshalConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate reports the first setting that cannot describe a playable arena.
func (c *Config) Validate() error {
	switch {
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	case c.Worm.Radius <= 0:
		return fmt.Errorf("worm radius must be positive, got %v", c.Worm.Radius)
	case 2*c.Worm.Radius > c.World.Width || 2*c.Worm.Radius > c.World.Height:
		return errors.New("world is too small for a worm")
	case c.Worm.MaxActionPoints <= 0 || c.Worm.MaxHitPoints <= 0:
		return errors.New("worm action and hit points must be positive")
	case len(c.Weapons) == 0:
		return errors.New("at least one weapon is required")
	case c.Game.MaxActionsPerTurn <= 0:
		return errors.New("Game.MaxActionsPerTurn must be positive")
	case c.Game.ScriptCacheSize <= 0:
		return errors.New("Game.ScriptCacheSize must be positive")
	}
	for _, w := range c.Weapons {
		if w.Name == "" {
			return errors.New("weapon without a name")
		}
	}
	return nil
}
