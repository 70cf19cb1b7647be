package docsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jward/docsync/internal/grammar"
)

// FunctionRef locates one function in a coverage report.
type FunctionRef struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// FileCoverage counts documented and undocumented functions in one file.
type FileCoverage struct {
	Path         string        `json:"path"`
	Language     string        `json:"language"`
	Functions    int           `json:"functions"`
	Documented   int           `json:"documented"`
	Undocumented []FunctionRef `json:"undocumented,omitempty"`
}

// Percent is the documented share of functions, 100 for files with none.
func (c FileCoverage) Percent() float64 {
	if c.Functions == 0 {
		return 100
	}
	return 100 * float64(c.Documented) / float64(c.Functions)
}

// Coverage reports which functions in content carry a doc comment.
func Coverage(ctx context.Context, content, language, path string) (FileCoverage, error) {
	lang, ok := grammar.ParseLanguage(language)
	if !ok {
		return FileCoverage{Path: path}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return coverageLanguage(ctx, content, lang, path), nil
}

func coverageLanguage(ctx context.Context, content string, lang grammar.Language, path string) FileCoverage {
	c := FileCoverage{Path: path, Language: lang.String()}
	for _, fn := range ExtractLanguage(ctx, content, lang, filepath.Ext(path)) {
		c.Functions++
		if fn.HasComment() {
			c.Documented++
			continue
		}
		c.Undocumented = append(c.Undocumented, FunctionRef{Name: fn.Name, Line: fn.Line})
	}
	return c
}

// CoverageFiles computes coverage for each path concurrently. Paths with
// unsupported extensions are skipped. Results are sorted by path.
func CoverageFiles(ctx context.Context, paths []string) ([]FileCoverage, error) {
	results := make([]*FileCoverage, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		lang, ok := grammar.LanguageForFile(path)
		if !ok {
			continue
		}
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("coverage %s: %w", path, err)
			}
			c := coverageLanguage(gctx, string(content), lang, path)
			results[i] = &c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]FileCoverage, 0, len(paths))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
