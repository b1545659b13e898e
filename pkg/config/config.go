// Package config loads the generation run configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes one generation run: a source document, the frontend
// that parses it, and the targets to emit.
type Config struct {
	// Provider selects the frontend ("openapi" or "llm-dialect").
	Provider string   `yaml:"provider"`
	Spec     string   `yaml:"spec"`
	Targets  []Target `yaml:"targets"`
}

// Target configures one per-language generation.
type Target struct {
	Language        string `yaml:"language"`
	OutputDir       string `yaml:"outputDir"`
	PackageName     string `yaml:"packageName"`
	PackageVersion  string `yaml:"packageVersion"`
	License         string `yaml:"license"`
	IncludeExamples bool   `yaml:"includeExamples"`
	IncludeTests    bool   `yaml:"includeTests"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Spec == "" {
		return nil, errors.New("config.spec is required")
	}
	if cfg.Provider == "" {
		cfg.Provider = "openapi"
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("config.targets must list at least one target")
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Language == "" || t.OutputDir == "" || t.PackageName == "" {
			return nil, fmt.Errorf("targets[%d] missing required fields (language, outputDir, packageName)", i)
		}
		if t.PackageVersion == "" {
			t.PackageVersion = "0.1.0"
		}
		if !filepath.IsAbs(t.OutputDir) {
			abs, _ := filepath.Abs(t.OutputDir)
			t.OutputDir = abs
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL.
	if u, err := url.Parse(cfg.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		// keep as-is
	} else if !filepath.IsAbs(cfg.Spec) {
		abs, _ := filepath.Abs(cfg.Spec)
		cfg.Spec = abs
	}
	return &cfg, nil
}
