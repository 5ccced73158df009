// Package brain abstracts the language model behind the editorial
// personas. The conversation driver only sees the Adapter interface;
// concrete adapters cover the OpenAI API, a deterministic mock, and a
// fallback chain.
package brain

import (
	"context"
	"fmt"
	"log"

	"github.com/techronicle/newsroom/internal/persona"
)

// Message is one prior utterance handed to the model as context.
type Message struct {
	Speaker string
	Role    string
	Text    string
}

// Request asks for the next utterance from a given speaker.
type Request struct {
	SessionID string
	Speaker   persona.Participant
	History   []Message
}

// Response is the generated utterance.
type Response struct {
	Text string
}

// Adapter produces one turn of dialogue for a persona.
type Adapter interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Config selects and configures an adapter.
type Config struct {
	// Mode is one of "auto", "openai", "mock", "fallback".
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewAdapter builds an adapter from config. Mode "auto" picks the
// OpenAI adapter when an API key is present and the mock otherwise, so
// a keyless dev setup still runs full sessions.
func NewAdapter(cfg Config) (Adapter, error) {
	switch cfg.Mode {
	case "", "auto":
		if cfg.APIKey != "" {
			return NewOpenAIAdapter(cfg), nil
		}
		log.Printf("brain: no API key configured, using mock adapter")
		return NewMockAdapter(), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("brain: mode openai requires an API key")
		}
		return NewOpenAIAdapter(cfg), nil
	case "mock":
		return NewMockAdapter(), nil
	case "fallback":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("brain: mode fallback requires an API key")
		}
		return NewFallbackAdapter(NewOpenAIAdapter(cfg), NewMockAdapter()), nil
	default:
		return nil, fmt.Errorf("brain: unknown adapter mode %q", cfg.Mode)
	}
}

// FallbackAdapter tries a primary adapter and falls back to a secondary
// when the primary fails and the context is still live.
type FallbackAdapter struct {
	primary   Adapter
	secondary Adapter
}

func NewFallbackAdapter(primary, secondary Adapter) *FallbackAdapter {
	return &FallbackAdapter{primary: primary, secondary: secondary}
}

func (a *FallbackAdapter) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := a.primary.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return Response{}, err
	}
	log.Printf("brain: primary adapter failed for %s, falling back: %v", req.Speaker.Name, err)
	return a.secondary.Generate(ctx, req)
}
