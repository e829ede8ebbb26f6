// Package advice produces feng-shui advice for a user message, memoized
// through the append-only advice cache.
package advice

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// systemPrompt fixes the advisor persona for every generation call.
const systemPrompt = "あなたは優しく丁寧な風水アドバイザーです。恋愛運、金運、仕事運などに対して、実践的で簡単なアドバイスをしてください。"

// Engine generates advice text for a user message.
type Engine interface {
	Generate(ctx context.Context, text string) (string, error)
}

// OpenAIEngine calls the OpenAI chat completions API.
type OpenAIEngine struct {
	client openai.Client
	model  string
}

// OpenAIOptions configures the engine client.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOpenAIEngine creates an engine backed by the OpenAI API.
func NewOpenAIEngine(opts OpenAIOptions) *OpenAIEngine {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	return &OpenAIEngine{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

// Generate runs one chat completion with the fixed system prompt and the
// user message as the user turn.
func (e *OpenAIEngine) Generate(ctx context.Context, text string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("blank completion content")
	}
	return content, nil
}
