package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
)

type PublisherService struct {
	pubRepo repository.PublisherRepository
}

func NewPublisherService(pubRepo repository.PublisherRepository) *PublisherService {
	return &PublisherService{pubRepo: pubRepo}
}

// ListActive returns the publisher catalog shown to content creators.
func (s *PublisherService) ListActive(ctx context.Context, category string, limit, offset int) ([]model.Publisher, int, error) {
	pubs, total, err := s.pubRepo.FindActive(ctx, category, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return pubs, total, nil
}

func (s *PublisherService) ListAll(ctx context.Context, limit, offset int) ([]model.Publisher, int, error) {
	pubs, total, err := s.pubRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return pubs, total, nil
}

func (s *PublisherService) GetByID(ctx context.Context, id string) (*model.Publisher, error) {
	pub, err := s.pubRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pub == nil {
		return nil, apperrors.NotFound("Publisher")
	}
	return pub, nil
}

func (s *PublisherService) Create(ctx context.Context, params model.CreatePublisherParams) (*model.Publisher, error) {
	if params.Name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if params.PriceCents <= 0 {
		return nil, apperrors.InvalidInput("priceCents", "must be positive")
	}

	pub, err := s.pubRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("publisherId", pub.ID).Str("name", pub.Name).Msg("publisher created")

	return pub, nil
}

func (s *PublisherService) Update(ctx context.Context, id string, params model.UpdatePublisherParams) (*model.Publisher, error) {
	if params.PriceCents != nil && *params.PriceCents <= 0 {
		return nil, apperrors.InvalidInput("priceCents", "must be positive")
	}

	pub, err := s.pubRepo.Update(ctx, id, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pub == nil {
		return nil, apperrors.NotFound("Publisher")
	}
	return pub, nil
}

func (s *PublisherService) Delete(ctx context.Context, id string) error {
	if err := s.pubRepo.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
