package editor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsFillZeroValues(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	def := DefaultConfig()
	if cfg != def {
		t.Errorf("applyDefaults on zero config = %+v, want %+v", cfg, def)
	}

	cfg = Config{Grid: GridConfig{Size: 0.5}}
	cfg.applyDefaults()
	if cfg.Grid.Size != 0.5 {
		t.Errorf("explicit grid size overwritten: %f", cfg.Grid.Size)
	}
	if cfg.History.Limit != def.History.Limit {
		t.Errorf("history limit not defaulted: %d", cfg.History.Limit)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	body := []byte("grid:\n  size: 0.25\nhistory:\n  limit: 10\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Grid.Size != 0.25 {
		t.Errorf("grid size = %f, want 0.25", cfg.Grid.Size)
	}
	if cfg.History.Limit != 10 {
		t.Errorf("history limit = %d, want 10", cfg.History.Limit)
	}
	// Unset sections fall back to defaults.
	if cfg.Spatial.CellSize != DefaultConfig().Spatial.CellSize {
		t.Errorf("cell size = %f, want default", cfg.Spatial.CellSize)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
