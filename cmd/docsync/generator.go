package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jward/docsync/internal/config"
	"github.com/jward/docsync/internal/generate"
	"github.com/jward/docsync/internal/script"
	"github.com/jward/docsync/scripts"
)

// buildGenerator constructs the comment generator named by cfg.
// Relative script directories resolve against repoRoot.
func buildGenerator(cfg *config.Config, repoRoot string) (generate.Generator, error) {
	logger := slog.Default()
	switch strings.ToLower(cfg.Generator.Kind) {
	case "script":
		var rt *script.Runtime
		if cfg.Script.Dir == "" {
			rt = script.NewRuntime("", script.WithRuntimeFS(scripts.FS), script.WithRuntimeLogger(logger))
		} else {
			rt = script.NewRuntime(absUnder(repoRoot, cfg.Script.Dir), script.WithRuntimeLogger(logger))
		}
		if _, err := rt.LoadScript(cfg.Script.Entry); err != nil {
			return nil, err
		}
		return generate.NewScript(rt, cfg.Script.Entry), nil
	case "openai":
		return generate.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
			generate.WithModel(cfg.OpenAI.Model),
			generate.WithMaxFuncChars(cfg.OpenAI.MaxFuncChars),
			generate.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidGenerator, cfg.Generator.Kind)
	}
}
