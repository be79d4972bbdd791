package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/strafe/internal/locomotion"
)

type Config struct {
	Logging    LoggingConfig     `yaml:"logging"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Locomotion locomotion.Params `yaml:"locomotion"`
	Stream     StreamConfig      `yaml:"stream"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type SimulationConfig struct {
	TickRate  int        `yaml:"tick_rate"`
	ArenaSize int        `yaml:"arena_size"`
	Spawn     [3]float64 `yaml:"spawn"`
}

type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Simulation: SimulationConfig{
			TickRate:  60,
			ArenaSize: 32,
		},
		Locomotion: locomotion.DefaultParams(),
		Stream: StreamConfig{
			Listen: "127.0.0.1:8089",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Simulation.TickRate <= 0 {
		return errors.Errorf("simulation.tick_rate must be > 0, got %d", c.Simulation.TickRate)
	}
	if c.Simulation.ArenaSize <= 0 {
		return errors.Errorf("simulation.arena_size must be > 0, got %d", c.Simulation.ArenaSize)
	}
	if c.Stream.Enabled && c.Stream.Listen == "" {
		return errors.New("stream.listen is required when stream.enabled is set")
	}
	return validateParams(c.Locomotion)
}

func validateParams(p locomotion.Params) error {
	fields := []struct {
		key   string
		value float64
	}{
		{"base_speed", p.BaseSpeed},
		{"air_speed_cap", p.AirSpeedCap},
		{"ground_acceleration", p.GroundAcceleration},
		{"air_acceleration", p.AirAcceleration},
		{"ground_friction", p.GroundFriction},
		{"air_friction", p.AirFriction},
		{"gravity", p.Gravity},
		{"jump_impulse", p.JumpImpulse},
		{"walk_multiplier", p.WalkMultiplier},
		{"crouch_multiplier", p.CrouchMultiplier},
	}
	for _, f := range fields {
		if f.value < 0 {
			return errors.Errorf("locomotion.%s must be >= 0, got %v", f.key, f.value)
		}
	}
	return nil
}

// TickInterval is the simulated time of one tick in seconds.
func (s SimulationConfig) TickInterval() float64 {
	return 1 / float64(s.TickRate)
}
