package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dmitrymomot/outreach/pkg/sanitizer"
)

// Config holds OpenAI settings.
type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

const (
	noteInstruction = "You write short, warm follow-up paragraphs for a transport broker. " +
		"Rewrite the notes you are given into two or three friendly sentences addressed to the contact. " +
		"Return only the paragraph."

	subjectInstruction = "You write email subject lines. Keep them under ten words, specific and friendly. " +
		"Return only the subject line without quotes."
)

// ChatClient is the subset of the OpenAI client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI implements Rewriter with chat completions.
type OpenAI struct {
	client ChatClient
	cfg    Config
}

// New returns an OpenAI rewriter, or Disabled when cfg has no API key.
func New(cfg Config) Rewriter {
	if cfg.APIKey == "" {
		return Disabled{}
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return NewWithClient(openai.NewClientWithConfig(oc), cfg)
}

// NewWithClient wraps an existing client.
func NewWithClient(client ChatClient, cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &OpenAI{client: client, cfg: cfg}
}

// RewriteNote returns an HTML-safe paragraph built from note.
func (o *OpenAI) RewriteNote(ctx context.Context, note string) (string, error) {
	out, err := o.complete(ctx, noteInstruction, "Notes: "+note)
	if err != nil {
		return "", err
	}
	return sanitizer.Fragment(out), nil
}

// RewriteSubject returns a plain-text subject tailored to note.
func (o *OpenAI) RewriteSubject(ctx context.Context, subject, note string) (string, error) {
	prompt := fmt.Sprintf("Original subject: %s\nNotes about the contact: %s\nWrite an improved subject line.", subject, note)
	out, err := o.complete(ctx, subjectInstruction, prompt)
	if err != nil {
		return "", err
	}
	out = strings.Trim(sanitizer.Text(out), `"'“”`)
	if out == "" {
		return "", errors.Join(ErrRewriteFailed, ErrEmptyResult)
	}
	return out, nil
}

func (o *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", errors.Join(ErrRewriteFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Join(ErrRewriteFailed, ErrEmptyResult)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.Join(ErrRewriteFailed, ErrEmptyResult)
	}
	return out, nil
}
