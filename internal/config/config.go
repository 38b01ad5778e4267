// Package config loads the application configuration from YAML, filling in
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Board      BoardConfig      `yaml:"board"`
	Simulation SimulationConfig `yaml:"simulation"`
	Server     ServerConfig     `yaml:"server"`
}

type BoardConfig struct {
	// AspectRatio is the board rectangle's depth over width.
	AspectRatio    float64 `yaml:"aspect_ratio"`
	MinHitDistance float64 `yaml:"min_hit_distance"`
}

type SimulationConfig struct {
	Seed           int64   `yaml:"seed"`
	FrameRate      int     `yaml:"frame_rate"`
	PlaneYaw       float64 `yaml:"plane_yaw"`
	PlaneWidth     float64 `yaml:"plane_width"`
	PlaneDepth     float64 `yaml:"plane_depth"`
	PositionJitter float64 `yaml:"position_jitter"`
	YawJitter      float64 `yaml:"yaw_jitter"`
	HitDropout     float64 `yaml:"hit_dropout"`
	PlaneDropout   float64 `yaml:"plane_dropout"`
}

type ServerConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	WriteTimeout Duration `yaml:"write_timeout"`
	MaxClients   int      `yaml:"max_clients"`
}

// Duration wraps time.Duration so YAML files can use "250ms" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Board: BoardConfig{
			AspectRatio:    2.7 / 1.5,
			MinHitDistance: 0.5,
		},
		Simulation: SimulationConfig{
			Seed:           1,
			FrameRate:      60,
			PlaneYaw:       0.4,
			PlaneWidth:     1.6,
			PlaneDepth:     2.4,
			PositionJitter: 0.01,
			YawJitter:      0.005,
			HitDropout:     0.05,
			PlaneDropout:   0.1,
		},
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8089",
			WriteTimeout: Duration(10 * time.Second),
			MaxClients:   64,
		},
	}
}

// Load reads path into a Config on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Board.AspectRatio <= 0 {
		return fmt.Errorf("board.aspect_ratio must be positive, got %v", c.Board.AspectRatio)
	}
	if c.Board.MinHitDistance < 0 {
		return fmt.Errorf("board.min_hit_distance must not be negative, got %v", c.Board.MinHitDistance)
	}
	if c.Simulation.FrameRate < 1 {
		return fmt.Errorf("simulation.frame_rate must be at least 1, got %d", c.Simulation.FrameRate)
	}
	for name, p := range map[string]float64{
		"simulation.hit_dropout":   c.Simulation.HitDropout,
		"simulation.plane_dropout": c.Simulation.PlaneDropout,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, p)
		}
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Server.MaxClients < 1 {
		return fmt.Errorf("server.max_clients must be at least 1, got %d", c.Server.MaxClients)
	}
	return nil
}
