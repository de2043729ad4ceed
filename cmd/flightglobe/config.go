// cmd/flightglobe/config.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyarc/flightglobe/sim"
)

// AppConfig is the top-level configuration for the flightglobe binary,
// optionally loaded from a YAML file; anything not given there keeps its
// default.
type AppConfig struct {
	Sim sim.Config `yaml:"sim"`

	Window struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"window"`

	// SpinRate is the globe's idle rotation in radians per second.
	SpinRate float32 `yaml:"spin_rate"`

	// MetricsAddr, if set, serves Prometheus metrics on that address.
	MetricsAddr string `yaml:"metrics_addr"`

	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
}

func defaultConfig() AppConfig {
	var cfg AppConfig
	cfg.Sim = sim.DefaultConfig
	cfg.Window.Width = 1280
	cfg.Window.Height = 800
	cfg.SpinRate = 0.05
	cfg.LogLevel = "info"
	return cfg
}

// loadConfig returns the defaults overlaid with the YAML file at path, if
// one was given.
func loadConfig(path string) (AppConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: unmarshaling config: %w", path, err)
	}
	if err := cfg.Sim.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
