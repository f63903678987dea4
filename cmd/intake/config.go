// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, loadable from a YAML file with
// command-line flags taking precedence.
type Config struct {
	DBPath string `yaml:"db_path"`
	AI     struct {
		Host  string `yaml:"host"`
		Model string `yaml:"model"`
	} `yaml:"ai"`
	Memory struct {
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"memory"`
	PoolSize int `yaml:"pool_size"`
}

// loadConfig reads a YAML configuration file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// resolveConfig merges the optional config file with command-line flags.
// Flags win over file values.
func resolveConfig(c *cli.Context) (*Config, error) {
	cfg := &Config{}

	if path := c.String("config"); path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	if host := c.String("ai-host"); host != "" {
		cfg.AI.Host = host
	}
	if model := c.String("ai-model"); model != "" {
		cfg.AI.Model = model
	}
	if c.IsSet("pool-size") {
		cfg.PoolSize = c.Int("pool-size")
	}

	return cfg, nil
}
