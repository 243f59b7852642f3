// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/flock"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed schema.json
var schemaJSON string

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen        ScreenConfig    `yaml:"screen"`
	Physics       PhysicsConfig   `yaml:"physics"`
	Index         IndexConfig     `yaml:"index"`
	FlockDefaults FlockConfig     `yaml:"flock_defaults"`
	Flocks        []FlockConfig   `yaml:"flocks"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT             float64 `yaml:"dt"`
	MaxTurnRate    float64 `yaml:"max_turn_rate"`    // rad/s, 0 = instant alignment
	StepsPerUpdate int     `yaml:"steps_per_update"` // Steps per rendered frame
	Workers        int     `yaml:"workers"`          // 0 = GOMAXPROCS
}

// IndexConfig selects and tunes the spatial index.
type IndexConfig struct {
	Strategy     string `yaml:"strategy"`      // tree | brute
	RebuildEvery int    `yaml:"rebuild_every"` // Tree rebuild cadence in steps
	QueryExtent  string `yaml:"query_extent"`  // enlarged | interaction
	BatchSize    int    `yaml:"batch_size"`
}

// Vec2Config is a point in world units.
type Vec2Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec returns v as a vector.
func (v Vec2Config) Vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// FlockConfig describes one ensemble.
type FlockConfig struct {
	Name          string       `yaml:"name"`
	Count         int          `yaml:"count"`
	Seed          int64        `yaml:"seed"`
	SpawnRadius   float64      `yaml:"spawn_radius"`
	Center        Vec2Config   `yaml:"center"`
	Color         string       `yaml:"color"`          // #rrggbb
	PointerTarget bool         `yaml:"pointer_target"` // Viewer pointer moves the target
	Params        ParamsConfig `yaml:"params"`
}

// ParamsConfig mirrors flock.Params.
type ParamsConfig struct {
	Separation        float64    `yaml:"separation"`
	Cohesion          float64    `yaml:"cohesion"`
	Alignment         float64    `yaml:"alignment"`
	InteractionRadius float64    `yaml:"interaction_radius"`
	BoidRadius        float64    `yaml:"boid_radius"`
	BlindAngle        float64    `yaml:"blind_angle"` // radians, [0, π]
	RelaxationTime    float64    `yaml:"relaxation_time"`
	TargetSpeed       float64    `yaml:"target_speed"`
	Sigma             float64    `yaml:"sigma"`
	Mass              float64    `yaml:"mass"`
	SpringCoefficient float64    `yaml:"spring_coefficient"`
	Target            Vec2Config `yaml:"target"`
}

// ToParams converts to the simulation parameter type.
func (p ParamsConfig) ToParams() flock.Params {
	return flock.Params{
		Separation:        p.Separation,
		Cohesion:          p.Cohesion,
		Alignment:         p.Alignment,
		InteractionRadius: p.InteractionRadius,
		BoidRadius:        p.BoidRadius,
		BlindAngle:        p.BlindAngle,
		RelaxationTime:    p.RelaxationTime,
		TargetSpeed:       p.TargetSpeed,
		Sigma:             p.Sigma,
		Mass:              p.Mass,
		SpringCoefficient: p.SpringCoefficient,
		Target:            p.Target.Vec(),
	}
}

// ParamsFrom converts simulation parameters back to their config form.
func ParamsFrom(p flock.Params) ParamsConfig {
	return ParamsConfig{
		Separation:        p.Separation,
		Cohesion:          p.Cohesion,
		Alignment:         p.Alignment,
		InteractionRadius: p.InteractionRadius,
		BoidRadius:        p.BoidRadius,
		BlindAngle:        p.BlindAngle,
		RelaxationTime:    p.RelaxationTime,
		TargetSpeed:       p.TargetSpeed,
		Sigma:             p.Sigma,
		Mass:              p.Mass,
		SpringCoefficient: p.SpringCoefficient,
		Target:            Vec2Config{X: p.Target.X, Y: p.Target.Y},
	}
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Simulated seconds per stats record
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Steps per perf record
	TraceEvery          int     `yaml:"trace_every"`           // Steps between trace rows, 0 = off
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	StatsWindowSteps int
	TotalAgents      int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Parse is like Load but reads the user configuration from memory.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := cfg.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.merge(data); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// merge unmarshals data on top of c. Fields absent from data keep their
// value. Entries of a flocks list start from FlockDefaults.
func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	var raw struct {
		Flocks []yaml.Node `yaml:"flocks"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Flocks == nil {
		return nil
	}
	flocks := make([]FlockConfig, len(raw.Flocks))
	for i := range raw.Flocks {
		flocks[i] = c.FlockDefaults
		if err := raw.Flocks[i].Decode(&flocks[i]); err != nil {
			return fmt.Errorf("flocks[%d]: %w", i, err)
		}
	}
	c.Flocks = flocks
	return nil
}

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	sch, err := jsonschema.CompileString("schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return sch, nil
})

// Validate checks the configuration against the embedded JSON schema and
// the constraints the schema cannot express.
func (c *Config) Validate() error {
	sch, err := schema()
	if err != nil {
		return err
	}

	// The schema sees the merged configuration, as JSON.
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("re-reading config: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("converting config to json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if len(c.Flocks) == 0 {
		return fmt.Errorf("%w: no flocks configured", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Flocks))
	for _, f := range c.Flocks {
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate flock name %q", ErrInvalid, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	steps := int(math.Round(c.Telemetry.StatsWindow / c.Physics.DT))
	if steps < 1 {
		steps = 1
	}
	c.Derived.StatsWindowSteps = steps

	c.Derived.TotalAgents = 0
	for _, f := range c.Flocks {
		c.Derived.TotalAgents += f.Count
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
