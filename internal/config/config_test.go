package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solver.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
timeBudgetMs: 2500
maxGenerations: 1000
seed: 42
cooling: 0.998
insertionWeights: [1.0, 2.0]
speedKmh: 35
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TimeBudget() != 2500*time.Millisecond {
		t.Errorf("budget: %v", cfg.TimeBudget())
	}
	if cfg.Seed != 42 || cfg.Cooling != 0.998 || cfg.SpeedKmh != 35 {
		t.Errorf("parsed wrong: %+v", cfg)
	}
	if len(cfg.InsertionWeights) != 2 || cfg.InsertionWeights[1] != 2.0 {
		t.Errorf("weights: %v", cfg.InsertionWeights)
	}
}

func TestLoadRejectsBadCooling(t *testing.T) {
	path := writeConfig(t, "cooling: 1.5\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for cooling out of range")
	}
}

func TestLoadRejectsOddWeights(t *testing.T) {
	path := writeConfig(t, "insertionWeights: [1.0]\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for weight vector of length 1")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
