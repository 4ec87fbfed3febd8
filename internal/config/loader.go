// internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadGlobal loads the global configuration from a YAML file
func LoadGlobal(path string) (*Global, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Global
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyGlobalDefaults(&cfg)
	return &cfg, nil
}

// DefaultGlobal returns the configuration used when no config file exists
func DefaultGlobal() *Global {
	var cfg Global
	applyGlobalDefaults(&cfg)
	return &cfg
}

// LoadRule loads a rule declaration from a YAML file
func LoadRule(path string) (*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}

	var rule Rule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	return &rule, nil
}

// RuleFile is a rule declaration together with the file it came from
type RuleFile struct {
	Path string
	Rule *Rule
}

// LoadRulesDir loads all rule declarations from a directory in file name order
func LoadRulesDir(dir string) ([]RuleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rules directory: %w", err)
	}

	var rules []RuleFile
	for _, entry := range entries {
		if entry.IsDir() || !IsRuleFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rule, err := LoadRule(path)
		if err != nil {
			return nil, fmt.Errorf("loading rule %s: %w", entry.Name(), err)
		}
		rules = append(rules, RuleFile{Path: path, Rule: rule})
	}

	return rules, nil
}

// IsRuleFile reports whether name has a rule file extension
func IsRuleFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func applyGlobalDefaults(cfg *Global) {
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Watch.DebounceMillis <= 0 {
		cfg.Watch.DebounceMillis = 500
	}
	if cfg.Registry.Path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.Registry.Path = filepath.Join(dir, "rulectl", "registry.db")
		} else {
			cfg.Registry.Path = "registry.db"
		}
	}
}
