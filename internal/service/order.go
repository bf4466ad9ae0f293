package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/database"
	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/sse"
)

type OrderService struct {
	db          *database.DB
	orderRepo   repository.OrderRepository
	articleRepo repository.ArticleRepository
	pubRepo     repository.PublisherRepository
	broker      *sse.Broker
}

func NewOrderService(
	db *database.DB,
	orderRepo repository.OrderRepository,
	articleRepo repository.ArticleRepository,
	pubRepo repository.PublisherRepository,
	broker *sse.Broker,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		articleRepo: articleRepo,
		pubRepo:     pubRepo,
		broker:      broker,
	}
}

// Checkout creates a pending order for one article/publisher pair, priced
// from the publisher row at checkout time.
func (s *OrderService) Checkout(ctx context.Context, userID, articleID, publisherID string) (*model.Order, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if article == nil || article.UserID != userID {
		return nil, apperrors.NotFound("Article")
	}
	if article.Status == model.ArticleStatusPublished {
		return nil, apperrors.Conflict("Article is already published")
	}

	pub, err := s.pubRepo.FindByID(ctx, publisherID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pub == nil || !pub.IsActive {
		return nil, apperrors.NotFound("Publisher")
	}

	order, err := s.orderRepo.Create(ctx, model.CreateOrderParams{
		UserID:      userID,
		ArticleID:   articleID,
		PublisherID: publisherID,
		AmountCents: pub.PriceCents,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("orderId", order.ID).
		Str("publisherId", publisherID).
		Int("amountCents", order.AmountCents).
		Msg("order created")

	return order, nil
}

// Pay flips a pending order to paid and marks the article submitted.
func (s *OrderService) Pay(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil || order.UserID != userID {
		return nil, apperrors.NotFound("Order")
	}
	if !model.CanTransitionOrder(order.Status, model.OrderStatusPaid) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(model.OrderStatusPaid))
	}

	var paid *model.Order
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		paid, err = s.orderRepo.WithTx(tx).SetStatus(ctx, orderID, model.OrderStatusPaid)
		if err != nil {
			return err
		}
		return s.articleRepo.WithTx(tx).SetStatus(ctx, order.ArticleID, model.ArticleStatusSubmitted)
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("orderId", orderID).Msg("order paid")

	return paid, nil
}

// Publish is the admin-side status flip: order paid -> published and article
// submitted -> published in one transaction, then a publication event for the
// owning user's feed. The event is best-effort and never rolls the flip back.
func (s *OrderService) Publish(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil {
		return nil, apperrors.NotFound("Order")
	}
	if !model.CanTransitionOrder(order.Status, model.OrderStatusPublished) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(model.OrderStatusPublished))
	}

	var published *model.Order
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		published, err = s.orderRepo.WithTx(tx).SetStatus(ctx, orderID, model.OrderStatusPublished)
		if err != nil {
			return err
		}
		return s.articleRepo.WithTx(tx).SetStatus(ctx, order.ArticleID, model.ArticleStatusPublished)
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if s.broker != nil {
		data, _ := json.Marshal(map[string]string{
			"orderId":   published.ID,
			"articleId": published.ArticleID,
		})
		if err := s.broker.Publish(ctx, order.UserID, sse.Event{
			Type: "article_published",
			Data: data,
		}); err != nil {
			log.Warn().Err(err).Str("orderId", orderID).Msg("failed to publish event")
		}
	}

	log.Info().Str("orderId", orderID).Str("articleId", order.ArticleID).Msg("order published")

	return published, nil
}

// Cancel voids a pending or paid order. Paid cancellations are an admin
// concern; users may only cancel pending orders.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil || (userID != "" && order.UserID != userID) {
		return nil, apperrors.NotFound("Order")
	}
	if userID != "" && order.Status != model.OrderStatusPending {
		return nil, apperrors.InvalidTransition(string(order.Status), string(model.OrderStatusCancelled))
	}
	if !model.CanTransitionOrder(order.Status, model.OrderStatusCancelled) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(model.OrderStatusCancelled))
	}

	cancelled, err := s.orderRepo.SetStatus(ctx, orderID, model.OrderStatusCancelled)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cancelled, nil
}

func (s *OrderService) GetOwned(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if order == nil || order.UserID != userID {
		return nil, apperrors.NotFound("Order")
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return orders, total, nil
}

func (s *OrderService) ListAll(ctx context.Context, status string, limit, offset int) ([]model.Order, int, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return orders, total, nil
}
