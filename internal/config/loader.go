package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
// configFile, when non-empty, names an explicit file and disables the
// .docsync/ search.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCSYNC_*, then OPENAI_API_KEY for the key)
// 2. Config file (.docsync/config.yml or .docsync/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".docsync"))
	}

	v.SetEnvPrefix("DOCSYNC")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DOCSYNC_GENERATOR_KIND)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"generator.kind",
		"generator.concurrency",
		"openai.api_key",
		"openai.base_url",
		"openai.model",
		"openai.max_func_chars",
		"script.dir",
		"script.entry",
		"paths.include",
		"paths.exclude",
		"paths.languages",
		"sync.parallel",
		"sync.dry_run",
		"storage.db_path",
	} {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("generator.kind", defaults.Generator.Kind)
	v.SetDefault("generator.concurrency", defaults.Generator.Concurrency)

	v.SetDefault("openai.api_key", defaults.OpenAI.APIKey)
	v.SetDefault("openai.base_url", defaults.OpenAI.BaseURL)
	v.SetDefault("openai.model", defaults.OpenAI.Model)
	v.SetDefault("openai.max_func_chars", defaults.OpenAI.MaxFuncChars)

	v.SetDefault("script.dir", defaults.Script.Dir)
	v.SetDefault("script.entry", defaults.Script.Entry)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.exclude", defaults.Paths.Exclude)
	v.SetDefault("paths.languages", defaults.Paths.Languages)

	v.SetDefault("sync.parallel", defaults.Sync.Parallel)
	v.SetDefault("sync.dry_run", defaults.Sync.DryRun)

	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, "").Load()
}
