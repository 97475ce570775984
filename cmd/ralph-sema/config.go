package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds option defaults loaded from a YAML file. Flags given on the
// command line take precedence over values from the file.
type Config struct {
	MaxDepth     int               `yaml:"max_depth"`
	Preprocess   bool              `yaml:"preprocess"`
	Preprocessor string            `yaml:"preprocessor"`
	Include      []string          `yaml:"include"`
	Define       map[string]string `yaml:"define"`
	Undefine     []string          `yaml:"undefine"`
	DumpParse    bool              `yaml:"dump_parse"`
	DumpScopes   bool              `yaml:"dump_scopes"`
}

// LoadConfig reads and decodes a config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("config %s: max_depth must not be negative", path)
	}
	return &cfg, nil
}

// Apply copies config values into the flag variables that were not set
// explicitly on the command line.
func (c *Config) Apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if c.MaxDepth > 0 && !flags.Changed("max-depth") {
		maxDepth = c.MaxDepth
	}
	if c.Preprocess && !flags.Changed("preprocess") {
		preprocess = true
	}
	if c.Preprocessor != "" && !flags.Changed("cpp") {
		preprocessor = c.Preprocessor
	}
	if c.DumpParse && !flags.Changed("dparse") {
		dParse = true
	}
	if c.DumpScopes && !flags.Changed("dscopes") {
		dScopes = true
	}
	if !flags.Changed("include") {
		includePaths = append(includePaths, c.Include...)
	}
	if !flags.Changed("undefine") {
		undefFlags = append(undefFlags, c.Undefine...)
	}
	if !flags.Changed("define") {
		for name, value := range c.Define {
			if value == "" {
				defineFlags = append(defineFlags, name)
			} else {
				defineFlags = append(defineFlags, name+"="+value)
			}
		}
	}
}
