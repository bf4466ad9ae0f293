package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/llm"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/util"
)

const (
	generationWindow    = time.Minute
	generationMaxTokens = 4096
	maxTopicLength      = 500
)

// modelCredits is the static per-model cost table, in credits.
var modelCredits = map[string]int{
	"gpt-4o":           10,
	"gpt-4o-mini":      2,
	"gemini-1.5-pro":   8,
	"gemini-1.5-flash": 2,
	"deepseek-chat":    1,
}

// modelProviders routes a model name to its provider.
var modelProviders = map[string]llm.Provider{
	"gpt-4o":           llm.ProviderOpenAI,
	"gpt-4o-mini":      llm.ProviderOpenAI,
	"gemini-1.5-pro":   llm.ProviderGemini,
	"gemini-1.5-flash": llm.ProviderGemini,
	"deepseek-chat":    llm.ProviderDeepSeek,
}

// GenerationService forwards article prompts to an LLM provider and saves the
// result as a draft. It deducts credits up front and refunds on upstream
// failure.
type GenerationService struct {
	registry    *llm.Registry
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	rateLimiter *RateLimiter
	ratePerMin  int
}

func NewGenerationService(
	registry *llm.Registry,
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	rateLimiter *RateLimiter,
	ratePerMin int,
) *GenerationService {
	return &GenerationService{
		registry:    registry,
		userRepo:    userRepo,
		articleRepo: articleRepo,
		rateLimiter: rateLimiter,
		ratePerMin:  ratePerMin,
	}
}

// ModelCost returns the credit cost of a model, or 0 for unknown models.
func ModelCost(modelName string) int {
	return modelCredits[modelName]
}

func (s *GenerationService) Generate(ctx context.Context, userID, modelName, topic string) (*model.Article, error) {
	if topic == "" {
		return nil, apperrors.MissingRequired("topic")
	}
	if len(topic) > maxTopicLength {
		return nil, apperrors.InvalidInput("topic", "exceeds maximum length")
	}

	provider, ok := modelProviders[modelName]
	if !ok {
		return nil, apperrors.InvalidInput("model", "unknown model")
	}

	client, err := s.registry.Get(provider)
	if err != nil {
		return nil, apperrors.ValidationError(fmt.Sprintf("Provider %s is not configured", provider))
	}

	if s.rateLimiter != nil {
		allowed, resetAt := s.rateLimiter.CheckLimit(ctx, "generation:"+userID, s.ratePerMin, generationWindow)
		if !allowed {
			return nil, apperrors.RateLimitExceeded().WithDetails(map[string]any{
				"resetAt": resetAt,
			})
		}
	}

	cost := modelCredits[modelName]
	user, err := s.userRepo.AdjustCredits(ctx, userID, -cost)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.Conflict("Insufficient credits")
	}

	prompt := fmt.Sprintf(
		"Write a publication-ready article about the following topic. Return only the article text, starting with a title on the first line.\n\nTopic: %s",
		topic,
	)

	text, err := client.Generate(ctx, llm.Request{
		Model:     modelName,
		Prompt:    prompt,
		MaxTokens: generationMaxTokens,
	})
	if err != nil {
		if _, refundErr := s.userRepo.AdjustCredits(ctx, userID, cost); refundErr != nil {
			log.Error().Err(refundErr).Str("userId", userID).Int("credits", cost).Msg("failed to refund credits")
		}
		return nil, apperrors.External(string(provider), err)
	}

	title, body := splitGenerated(text)

	article, err := s.articleRepo.Create(ctx, model.CreateArticleParams{
		UserID:      userID,
		Title:       title,
		Body:        body,
		WordCount:   util.CountWords(body),
		AIGenerated: true,
		AIModel:     &modelName,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("userId", userID).
		Str("articleId", article.ID).
		Str("model", modelName).
		Int("credits", cost).
		Msg("article generated")

	return article, nil
}

// splitGenerated takes the first line as the title and the rest as the body.
func splitGenerated(text string) (title, body string) {
	for i, r := range text {
		if r == '\n' {
			title = trimTitle(text[:i])
			body = trimLeadingNewlines(text[i+1:])
			if body == "" {
				body = title
			}
			return title, body
		}
	}
	return trimTitle(text), text
}

func trimTitle(s string) string {
	for len(s) > 0 && (s[0] == '#' || s[0] == ' ') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func trimLeadingNewlines(s string) string {
	for len(s) > 0 && (s[0] == '\n' || s[0] == '\r') {
		s = s[1:]
	}
	return s
}
