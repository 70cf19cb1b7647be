package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = openai.GPT4o

	// DefaultMaxFuncChars is the function length above which the body is
	// summarized before it is sent for documentation.
	DefaultMaxFuncChars = 12000
)

// ErrEmptyResponse means the completion endpoint returned no choices.
var ErrEmptyResponse = errors.New("generate: empty completion response")

// OpenAI writes doc comments with a chat completion model. A function that
// already has a comment gets a fresh comment first, then a second request
// merges the two, preferring the new text on conflicts.
type OpenAI struct {
	client       *openai.Client
	model        string
	maxFuncChars int
	logger       *slog.Logger
}

// OpenAIOption configures an OpenAI generator.
type OpenAIOption func(*OpenAI)

// WithModel sets the chat model.
func WithModel(model string) OpenAIOption {
	return func(g *OpenAI) {
		if model != "" {
			g.model = model
		}
	}
}

// WithMaxFuncChars sets the length above which functions are summarized
// before prompting. Zero or less disables summarizing.
func WithMaxFuncChars(n int) OpenAIOption {
	return func(g *OpenAI) {
		g.maxFuncChars = n
	}
}

// WithLogger sets the logger for request-level debug output.
func WithLogger(l *slog.Logger) OpenAIOption {
	return func(g *OpenAI) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewOpenAI creates a generator for the chat completions API. baseURL may be
// empty for the public endpoint or point at any compatible server.
func NewOpenAI(apiKey, baseURL string, opts ...OpenAIOption) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	g := &OpenAI{
		client:       openai.NewClientWithConfig(cfg),
		model:        DefaultModel,
		maxFuncChars: DefaultMaxFuncChars,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns "openai:<model>".
func (g *OpenAI) Name() string {
	return "openai:" + g.model
}

// Generate writes a comment for req.Func and merges it with req.Comment
// when one exists.
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	lang := req.Language.String()

	body, err := g.summarize(ctx, req.Func)
	if err != nil {
		return "", fmt.Errorf("generate: summarize %s: %w", req.Name, err)
	}

	written, err := g.complete(ctx, lang, FormatPrompt(
		fmt.Sprintf("Write a %s doc comment for the following function.\n", lang),
		"===",
		body,
		"===",
	))
	if err != nil {
		return "", fmt.Errorf("generate: write %s: %w", req.Name, err)
	}
	if req.Comment == "" {
		return written, nil
	}

	merged, err := g.complete(ctx, lang, FormatPrompt(
		fmt.Sprintf("Merge these two %s doc comments, maintaining the important information.", lang),
		fmt.Sprintf("If there are any conflicts of content, prefer the new documentation. Return only the %s doc comment.\n", lang),
		"Old documentation:",
		"===",
		req.Comment,
		"===\n",
		"New documentation:",
		"===",
		written,
		"===",
	))
	if err != nil {
		return "", fmt.Errorf("generate: merge %s: %w", req.Name, err)
	}
	return merged, nil
}

// complete sends one system+user exchange and returns the reply with any
// markdown code fence removed.
func (g *OpenAI) complete(ctx context.Context, lang, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf("You must respond with only a valid %s doc comment.", lang)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	g.logger.Debug("completion",
		slog.String("model", g.model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return stripFence(resp.Choices[0].Message.Content), nil
}

// summarize shortens functions longer than maxFuncChars with a rolling
// summary: the text is split on line boundaries into chunks, and each chunk
// is folded into the summary of the chunks before it.
func (g *OpenAI) summarize(ctx context.Context, funcText string) (string, error) {
	if g.maxFuncChars <= 0 || len(funcText) <= g.maxFuncChars {
		return funcText, nil
	}

	summary := ""
	for _, chunk := range chunkLines(funcText, g.maxFuncChars) {
		prompt := FormatPrompt(
			"Summarize the following part of a function. Keep its signature, parameters, return values, errors and side effects.",
			"===",
			chunk,
			"===",
		)
		if summary != "" {
			prompt = FormatPrompt(
				"Extend this summary of a function with the next part of its source.",
				"Summary so far:",
				"===",
				summary,
				"===\n",
				"Next part:",
				"===",
				chunk,
				"===",
			)
		}
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		summary = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	return summary, nil
}

// chunkLines splits s into pieces of at most size bytes, breaking after a
// newline where possible.
func chunkLines(s string, size int) []string {
	var chunks []string
	for len(s) > size {
		cut := strings.LastIndexByte(s[:size], '\n') + 1
		if cut <= 0 {
			cut = size
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// stripFence removes a surrounding ``` fence, with or without a language
// tag, from a model reply.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(s[3:], "```")
	if i := strings.IndexByte(inner, '\n'); i >= 0 {
		inner = inner[i+1:]
	}
	return strings.TrimSpace(inner)
}
