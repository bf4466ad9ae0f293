package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	openAIBaseURL  = "https://api.openai.com/v1"
	requestTimeout = 60 * time.Second
)

// chatRequest is the OpenAI chat completions wire format. DeepSeek exposes
// the same shape, so both clients share it.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.baseURL = baseURL
	return c
}

func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	return chatCompletion(ctx, c.client, c.baseURL+"/chat/completions", c.apiKey, req, string(ProviderOpenAI))
}

func chatCompletion(ctx context.Context, client *http.Client, url, apiKey string, req Request, provider string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     req.Model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := client.Do(httpReq)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("provider", provider).Dur("elapsed", elapsed).Msg("llm request error")
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		log.Error().
			Str("provider", provider).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("llm request rejected")
		return "", fmt.Errorf("llm request failed with status %d: %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion from %s", provider)
	}

	log.Info().
		Str("provider", provider).
		Str("model", req.Model).
		Dur("elapsed", elapsed).
		Msg("llm completion received")

	return parsed.Choices[0].Message.Content, nil
}
