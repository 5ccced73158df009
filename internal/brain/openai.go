package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/techronicle/newsroom/internal/reliability"
)

const defaultModel = "gpt-4o-mini"

// OpenAIAdapter generates persona turns through the OpenAI chat
// completion API, or any compatible endpoint via BaseURL.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (Response, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.Speaker.SystemPrompt},
	}
	if len(req.History) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: historyPrompt(req),
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: req.Speaker.Temperature,
		MaxTokens:   req.Speaker.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && !reliability.IsRetryableHTTPStatus(apiErr.HTTPStatusCode) {
			return Response{}, reliability.Permanent(fmt.Errorf("brain: openai call for %s: %w", req.Speaker.Name, err))
		}
		return Response{}, fmt.Errorf("brain: openai call for %s: %w", req.Speaker.Name, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("brain: openai returned no choices for %s", req.Speaker.Name)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Response{}, fmt.Errorf("brain: openai returned empty content for %s", req.Speaker.Name)
	}
	return Response{Text: text}, nil
}

func historyPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Editorial meeting so far:\n\n")
	for _, m := range req.History {
		fmt.Fprintf(&b, "%s: %s\n", m.Speaker, m.Text)
	}
	fmt.Fprintf(&b, "\nRespond as %s in character. Stay brief.", req.Speaker.Name)
	return b.String()
}
