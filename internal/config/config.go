// Package config loads solver tuning from a YAML file for the CLI.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Solver mirrors solver.Config in file form.
type Solver struct {
	TimeBudgetMs     int       `yaml:"timeBudgetMs"`
	MaxGenerations   int       `yaml:"maxGenerations"`
	Seed             int64     `yaml:"seed"`
	InitTemp         float64   `yaml:"initTemp"`
	Cooling          float64   `yaml:"cooling"`
	InsertionWeights []float64 `yaml:"insertionWeights"`
	SpeedKmh         float64   `yaml:"speedKmh"`
}

// Load reads and validates a solver config file.
func Load(path string) (*Solver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Solver
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Solver) Validate() error {
	if c.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	if c.MaxGenerations < 0 {
		return fmt.Errorf("maxGenerations must be >= 0")
	}
	if c.Cooling != 0 && (c.Cooling <= 0 || c.Cooling >= 1) {
		return fmt.Errorf("cooling must be in (0,1)")
	}
	if c.InitTemp < 0 {
		return fmt.Errorf("initTemp must be >= 0")
	}
	if n := len(c.InsertionWeights); n != 0 && n != 2 {
		return fmt.Errorf("insertionWeights must have length 2")
	}
	if c.SpeedKmh < 0 {
		return fmt.Errorf("speedKmh must be >= 0")
	}
	return nil
}

// TimeBudget returns the configured budget as a duration.
func (c *Solver) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetMs) * time.Millisecond
}
