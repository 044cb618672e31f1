package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	if cfg.World.Nodes < 2 {
		t.Errorf("default nodes = %d", cfg.World.Nodes)
	}
	if cfg.Physics.ConversionConstant <= 0 {
		t.Errorf("default conversion constant = %v", cfg.Physics.ConversionConstant)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("seed: 7\nworld:\n  nodes: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.World.Nodes != 5 {
		t.Errorf("Nodes = %d, want 5", cfg.World.Nodes)
	}
	// Untouched fields keep their defaults.
	if cfg.World.MaxTypes != Default().World.MaxTypes {
		t.Errorf("MaxTypes = %d, want default", cfg.World.MaxTypes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"one node", func(c *Config) { c.World.Nodes = 1 }},
		{"zero types", func(c *Config) { c.World.MaxTypes = 0 }},
		{"too many types", func(c *Config) { c.World.MaxTypes = 300 }},
		{"zero transit capacity", func(c *Config) { c.World.TransitCapacity = 0 }},
		{"zero conversion", func(c *Config) { c.Physics.ConversionConstant = 0 }},
		{"radiation above one", func(c *Config) { c.Physics.RadiationRate = 1.5 }},
		{"child fraction one", func(c *Config) { c.Replication.ChildFraction = 1.0 }},
		{"maintainer range inverted", func(c *Config) {
			c.Artifacts.MaintainerMinTicks = 10
			c.Artifacts.MaintainerMaxTicks = 5
		}},
		{"zero temperature", func(c *Config) { c.Behavior.Temperature = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Seed = 99

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Seed != 99 {
		t.Errorf("Seed = %d after round trip, want 99", loaded.Seed)
	}
}
