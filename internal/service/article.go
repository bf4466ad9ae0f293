package service

import (
	"context"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/util"
)

const maxArticleBodyBytes = 200 * 1024

type ArticleService struct {
	articleRepo repository.ArticleRepository
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

func (s *ArticleService) Create(ctx context.Context, userID, title, body string, aiModel *string) (*model.Article, error) {
	if title == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if body == "" {
		return nil, apperrors.MissingRequired("body")
	}
	if len(body) > maxArticleBodyBytes {
		return nil, apperrors.InvalidInput("body", "exceeds maximum length")
	}

	article, err := s.articleRepo.Create(ctx, model.CreateArticleParams{
		UserID:      userID,
		Title:       title,
		Body:        body,
		WordCount:   util.CountWords(body),
		AIGenerated: aiModel != nil,
		AIModel:     aiModel,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return article, nil
}

// GetOwned returns an article only if it belongs to the requesting user.
// Foreign articles read as not-found, never as forbidden.
func (s *ArticleService) GetOwned(ctx context.Context, userID, articleID string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if article == nil || article.UserID != userID {
		return nil, apperrors.NotFound("Article")
	}
	return article, nil
}

func (s *ArticleService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Article, int, error) {
	articles, total, err := s.articleRepo.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return articles, total, nil
}

func (s *ArticleService) ListAll(ctx context.Context, status string, limit, offset int) ([]model.Article, int, error) {
	articles, total, err := s.articleRepo.FindAll(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return articles, total, nil
}

func (s *ArticleService) Update(ctx context.Context, userID, articleID string, title, body *string) (*model.Article, error) {
	article, err := s.GetOwned(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}
	if article.Status == model.ArticleStatusPublished {
		return nil, apperrors.Conflict("Published articles cannot be edited")
	}
	if body != nil && len(*body) > maxArticleBodyBytes {
		return nil, apperrors.InvalidInput("body", "exceeds maximum length")
	}

	params := model.UpdateArticleParams{Title: title, Body: body}
	if body != nil {
		wc := util.CountWords(*body)
		params.WordCount = &wc
	}

	updated, err := s.articleRepo.Update(ctx, articleID, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Article")
	}
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, userID, articleID string) error {
	article, err := s.GetOwned(ctx, userID, articleID)
	if err != nil {
		return err
	}
	if article.Status == model.ArticleStatusPublished {
		return apperrors.Conflict("Published articles cannot be deleted")
	}
	if err := s.articleRepo.Delete(ctx, articleID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
