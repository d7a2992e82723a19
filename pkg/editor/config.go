package editor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/atrium/pkg/history"
	"github.com/chazu/atrium/pkg/spatial"
)

// GridConfig sets the world-space snapping step.
type GridConfig struct {
	Size float64 `json:"size" yaml:"size"`
}

// SpatialConfig sets the spatial index cell size.
type SpatialConfig struct {
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	Limit int `json:"limit" yaml:"limit"`
}

// Config is the per-session editor configuration.
type Config struct {
	Grid    GridConfig    `json:"grid" yaml:"grid"`
	Spatial SpatialConfig `json:"spatial" yaml:"spatial"`
	History HistoryConfig `json:"history" yaml:"history"`
}

// DefaultConfig returns the stock configuration: 1-unit grid, 1-unit index
// cells, 50 undo entries.
func DefaultConfig() Config {
	return Config{
		Grid:    GridConfig{Size: 1},
		Spatial: SpatialConfig{CellSize: spatial.DefaultCellSize},
		History: HistoryConfig{Limit: history.DefaultLimit},
	}
}

// applyDefaults fills zero values with the stock settings.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Grid.Size <= 0 {
		c.Grid = def.Grid
	}
	if c.Spatial.CellSize <= 0 {
		c.Spatial = def.Spatial
	}
	if c.History.Limit <= 0 {
		c.History = def.History
	}
}

// LoadConfig reads a yaml config file, filling defaults for anything left
// unset.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("editor: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("editor: parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
