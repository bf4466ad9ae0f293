package llm

import (
	"context"
	"fmt"
)

type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderGemini   Provider = "gemini"
	ProviderDeepSeek Provider = "deepseek"
)

// Request is a single generation call. There is no retry, backoff, or
// streaming here: one POST, one parsed response.
type Request struct {
	Model     string
	Prompt    string
	MaxTokens int
}

type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() Provider
}

// Registry holds the configured provider clients.
type Registry struct {
	clients map[Provider]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[Provider]Client)}
	for _, c := range clients {
		r.clients[c.Provider()] = c
	}
	return r
}

func (r *Registry) Get(provider Provider) (Client, error) {
	c, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", provider)
	}
	return c, nil
}

func (r *Registry) Providers() []Provider {
	out := make([]Provider, 0, len(r.clients))
	for p := range r.clients {
		out = append(out, p)
	}
	return out
}
