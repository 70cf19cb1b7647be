package docsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/docsync/internal/generate"
	"github.com/jward/docsync/internal/grammar"
	"github.com/jward/docsync/internal/store"
)

// DefaultConcurrency bounds the generation calls in flight for one file.
const DefaultConcurrency = 4

// CommentCache stores generator output by function body hash. *Store
// satisfies it, and so does the in-memory batch the Engine uses during a
// parallel run.
type CommentCache = store.CommentCache

// DocumentOptions tunes Document. The zero value is usable.
type DocumentOptions struct {
	// Concurrency bounds the generation calls in flight. Zero or less means
	// DefaultConcurrency.
	Concurrency int

	// Cache, when set, is consulted before calling the generator and
	// receives every fresh result.
	Cache CommentCache

	Logger *slog.Logger
}

// DocumentResult is the outcome of documenting one file.
type DocumentResult struct {
	// Content is the rewritten file, or the input when nothing changed or
	// the rewrite was rejected.
	Content string

	// Functions are the extracted records with UpdatedComment filled in.
	Functions []ParsedFunction

	// Updated counts functions whose comment was inserted or replaced.
	Updated int

	// Cached counts comments served from the cache.
	Cached int
}

// Changed reports whether Content differs from the input.
func (r *DocumentResult) Changed(original string) bool {
	return r.Content != original
}

// Document extracts every function in content, asks gen for a comment per
// function concurrently, writes the comments back, and verifies the result
// still parses. Generator output that is not already a comment is wrapped in
// the language's doc comment delimiters.
//
// On any error the result carries the original content. A rewrite that no
// longer parses returns an error wrapping ErrSyntaxInvalid.
func Document(ctx context.Context, content, language, path string, gen Generator, opts DocumentOptions) (*DocumentResult, error) {
	lang, ok := grammar.ParseLanguage(language)
	if !ok {
		return &DocumentResult{Content: content}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return documentLanguage(ctx, content, lang, path, gen, opts)
}

func documentLanguage(ctx context.Context, content string, lang grammar.Language, path string, gen Generator, opts DocumentOptions) (*DocumentResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	ext := filepath.Ext(path)
	res := &DocumentResult{Content: content}
	fns := ExtractLanguage(ctx, content, lang, ext)
	if len(fns) == 0 {
		logger.Debug("no functions", slog.String("file", path))
		return res, nil
	}
	res.Functions = fns

	start := time.Now()
	cached := make([]bool, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range fns {
		g.Go(func() error {
			text, hit, err := commentFor(gctx, gen, opts.Cache, lang, path, fns[i])
			if err != nil {
				return fmt.Errorf("%s:%d %s: %w", path, fns[i].Line, fns[i].Name, err)
			}
			cached[i] = hit
			fns[i].UpdatedComment = finishComment(lang, fns[i], text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i := range fns {
			fns[i].UpdatedComment = ""
		}
		return res, err
	}

	for i, fn := range fns {
		if fn.UpdatedComment != "" {
			res.Updated++
		}
		if cached[i] {
			res.Cached++
		}
	}
	if res.Updated == 0 {
		return res, nil
	}

	rewritten := Rewrite(content, fns)
	if err := CheckSyntaxLanguage(ctx, rewritten, lang, ext); err != nil {
		logger.Warn("rewrite rejected",
			slog.String("file", path),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, ErrSyntaxInvalid) {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		return res, fmt.Errorf("%s: check syntax: %w", path, err)
	}

	res.Content = rewritten
	logger.Debug("documented",
		slog.String("file", path),
		slog.Int("functions", len(fns)),
		slog.Int("updated", res.Updated),
		slog.Int("cached", res.Cached),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// commentFor returns the generator's comment for fn, from cache when
// possible. hit reports a cache hit.
func commentFor(ctx context.Context, gen Generator, cache CommentCache, lang grammar.Language, path string, fn ParsedFunction) (text string, hit bool, err error) {
	if cache != nil {
		text, ok, err := cache.CachedComment(fn.Key, gen.Name())
		if err != nil {
			return "", false, err
		}
		if ok {
			return text, true, nil
		}
	}

	text, err = gen.Generate(ctx, generate.Request{
		Language: lang,
		Path:     path,
		Name:     fn.Name,
		Func:     fn.Func,
		Comment:  fn.Comment,
	})
	if err != nil {
		return "", false, err
	}

	if cache != nil {
		err := cache.PutComment(&store.Comment{
			FuncHash:  fn.Key,
			Generator: gen.Name(),
			Language:  lang.String(),
			Text:      text,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return "", false, err
		}
	}
	return text, false, nil
}

// finishComment turns generator output into an UpdatedComment value. Empty
// output and output identical to the existing comment mean no update.
func finishComment(lang grammar.Language, fn ParsedFunction, text string) string {
	text = strings.Trim(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if !grammar.IsComment(lang, text) {
		text = grammar.WrapComment(lang, strings.TrimSpace(text))
	}
	if NormalizeComment(fn.Func, text) == NormalizeComment(fn.Func, fn.Comment) {
		return ""
	}
	return text
}
