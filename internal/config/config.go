// Package config loads docsync settings from .docsync/config.yml and
// DOCSYNC_* environment variables.
package config

import "github.com/jward/docsync/internal/generate"

// Config represents the complete docsync configuration.
// It can be loaded from .docsync/config.yml with environment variable overrides.
type Config struct {
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Script    ScriptConfig    `yaml:"script" mapstructure:"script"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Sync      SyncConfig      `yaml:"sync" mapstructure:"sync"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
}

// GeneratorConfig selects how comments are produced.
type GeneratorConfig struct {
	Kind        string `yaml:"kind" mapstructure:"kind"`               // "script" or "openai"
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"` // generation calls in flight per file
}

// OpenAIConfig configures the chat completion generator.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`               // falls back to OPENAI_API_KEY
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`             // empty for the public endpoint
	Model        string `yaml:"model" mapstructure:"model"`                   // e.g., "gpt-4o"
	MaxFuncChars int    `yaml:"max_func_chars" mapstructure:"max_func_chars"` // summarize longer functions; 0 disables
}

// ScriptConfig configures the Risor generator.
type ScriptConfig struct {
	Dir   string `yaml:"dir" mapstructure:"dir"`     // empty uses the embedded scripts
	Entry string `yaml:"entry" mapstructure:"entry"` // entry script relative to Dir
}

// PathsConfig defines which files sync touches.
type PathsConfig struct {
	Include   []string `yaml:"include" mapstructure:"include"`     // glob patterns; empty means everything
	Exclude   []string `yaml:"exclude" mapstructure:"exclude"`     // glob patterns to skip
	Languages []string `yaml:"languages" mapstructure:"languages"` // language filter; empty means all supported
}

// SyncConfig controls repository sync behaviour.
type SyncConfig struct {
	Parallel bool `yaml:"parallel" mapstructure:"parallel"` // process files concurrently
	DryRun   bool `yaml:"dry_run" mapstructure:"dry_run"`   // report diffs without writing
}

// StorageConfig defines where sync state lives.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative to the repo root
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Kind:        "script",
			Concurrency: 4,
		},
		OpenAI: OpenAIConfig{
			Model:        generate.DefaultModel,
			MaxFuncChars: generate.DefaultMaxFuncChars,
		},
		Script: ScriptConfig{
			Entry: generate.DefaultScript,
		},
		Paths: PathsConfig{
			Exclude: []string{
				"**/node_modules/**",
				"**/vendor/**",
				"**/*.min.js",
			},
		},
		Sync: SyncConfig{
			Parallel: true,
		},
		Storage: StorageConfig{
			DBPath: ".docsync/state.db",
		},
	}
}
