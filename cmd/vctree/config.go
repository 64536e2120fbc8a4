package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dannyswat/vctree/internal/logging"
)

// Config is the optional vctree.yaml file. Flags override it.
type Config struct {
	Log  logging.Config `yaml:"log"`
	Dump bool           `yaml:"dump"`
}

// loadConfig reads path. A missing file yields the zero config unless the
// path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
