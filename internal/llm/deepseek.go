package llm

import (
	"context"
	"net/http"
)

const deepSeekBaseURL = "https://api.deepseek.com"

// DeepSeekClient speaks the OpenAI-compatible chat completions API that
// DeepSeek exposes.
type DeepSeekClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewDeepSeekClient(apiKey string) *DeepSeekClient {
	return &DeepSeekClient{
		apiKey:  apiKey,
		baseURL: deepSeekBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *DeepSeekClient) WithBaseURL(baseURL string) *DeepSeekClient {
	c.baseURL = baseURL
	return c
}

func (c *DeepSeekClient) Provider() Provider {
	return ProviderDeepSeek
}

func (c *DeepSeekClient) Generate(ctx context.Context, req Request) (string, error) {
	return chatCompletion(ctx, c.client, c.baseURL+"/chat/completions", c.apiKey, req, string(ProviderDeepSeek))
}
