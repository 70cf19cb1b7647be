package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jward/docsync/internal/grammar"
)

var (
	// ErrInvalidGenerator indicates an unsupported generator kind
	ErrInvalidGenerator = errors.New("invalid generator")

	// ErrInvalidConcurrency indicates a non-positive concurrency limit
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrMissingAPIKey indicates the openai generator has no key
	ErrMissingAPIKey = errors.New("missing openai api key")

	// ErrInvalidLanguage indicates an unknown language in paths.languages
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	switch strings.ToLower(cfg.Generator.Kind) {
	case "script":
	case "openai":
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			errs = append(errs, fmt.Errorf("%w: set openai.api_key or OPENAI_API_KEY", ErrMissingAPIKey))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'script' or 'openai', got '%s'", ErrInvalidGenerator, cfg.Generator.Kind))
	}

	if cfg.Generator.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidConcurrency, cfg.Generator.Concurrency))
	}

	if cfg.OpenAI.MaxFuncChars < 0 {
		errs = append(errs, fmt.Errorf("openai.max_func_chars must not be negative, got %d", cfg.OpenAI.MaxFuncChars))
	}

	for _, name := range cfg.Paths.Languages {
		if _, ok := grammar.ParseLanguage(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLanguage, name))
		}
	}

	for _, p := range append(append([]string{}, cfg.Paths.Include...), cfg.Paths.Exclude...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
		}
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, errors.New("storage.db_path is required"))
	}

	return errors.Join(errs...)
}
