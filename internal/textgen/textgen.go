// Package textgen wraps the Anthropic API for the short prose fragments
// the engine emits (risk narratives, query summaries). Every call is
// bounded by a timeout; callers treat failures as a signal to fall back
// to static text, never as a hard error.
package textgen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrEmptyCompletion is returned when the model responds with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Defaults for the completion client.
const (
	DefaultModel     = string(anthropic.ModelClaude3_5HaikuLatest)
	DefaultMaxTokens = 512
	DefaultTimeout   = 10 * time.Second
)

// Completer produces prose from a prompt. The production implementation
// is Client; tests inject fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is an Anthropic-backed Completer.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens overrides the default completion budget.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a completion client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check
var _ Completer = (*Client)(nil)

// Complete sends a single-turn prompt and returns the concatenated text
// blocks of the response. The call is bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Static is a Completer that always returns the same text. Used as the
// zero-dependency fallback when no API key is configured.
type Static struct {
	Text string
}

// Compile-time interface check
var _ Completer = Static{}

func (s Static) Complete(ctx context.Context, prompt string) (string, error) {
	return s.Text, nil
}
