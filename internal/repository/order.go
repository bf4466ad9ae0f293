package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/articleai/articleai-server/internal/database"
	"github.com/articleai/articleai-server/internal/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error)
	FindAll(ctx context.Context, status string, limit, offset int) ([]model.Order, int, error)
	Create(ctx context.Context, params model.CreateOrderParams) (*model.Order, error)
	SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int, error)
	WithTx(tx *sqlx.Tx) OrderRepository
}

type orderRepo struct {
	db database.DBTX
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) WithTx(tx *sqlx.Tx) OrderRepository {
	return &orderRepo{db: tx}
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1`, id)
	return HandleNotFound(&order, err)
}

func (r *orderRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error) {
	var orders []model.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepo) FindAll(ctx context.Context, status string, limit, offset int) ([]model.Order, int, error) {
	var orders []model.Order
	var total int

	query := `SELECT * FROM orders WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM orders WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += ` AND status = $` + strconv.Itoa(argIndex)
		countQuery += ` AND status = $` + strconv.Itoa(argIndex)
		args = append(args, status)
		argIndex++
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIndex) + ` OFFSET $` + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, err
	}

	countArgs := args[:len(args)-2]
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepo) Create(ctx context.Context, params model.CreateOrderParams) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `
		INSERT INTO orders (user_id, article_id, publisher_id, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.UserID, params.ArticleID, params.PublisherID, params.AmountCents)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET
			status = $2,
			paid_at = CASE WHEN $2 = 'paid' THEN NOW() ELSE paid_at END,
			published_at = CASE WHEN $2 = 'published' THEN NOW() ELSE published_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, status)
	return HandleNotFound(&order, err)
}

func (r *orderRepo) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1
	`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *orderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE status = $1`, status)
	return count, err
}
