package repository

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/articleai/articleai-server/internal/model"
)

type PublisherRepository interface {
	FindByID(ctx context.Context, id string) (*model.Publisher, error)
	FindActive(ctx context.Context, category string, limit, offset int) ([]model.Publisher, int, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Publisher, int, error)
	Create(ctx context.Context, params model.CreatePublisherParams) (*model.Publisher, error)
	Update(ctx context.Context, id string, params model.UpdatePublisherParams) (*model.Publisher, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type publisherRepo struct {
	db *sqlx.DB
}

func NewPublisherRepository(db *sqlx.DB) PublisherRepository {
	return &publisherRepo{db: db}
}

func (r *publisherRepo) FindByID(ctx context.Context, id string) (*model.Publisher, error) {
	var pub model.Publisher
	err := r.db.GetContext(ctx, &pub, `SELECT * FROM publishers WHERE id = $1`, id)
	return HandleNotFound(&pub, err)
}

func (r *publisherRepo) FindActive(ctx context.Context, category string, limit, offset int) ([]model.Publisher, int, error) {
	var pubs []model.Publisher
	var total int

	query := `SELECT * FROM publishers WHERE is_active = TRUE`
	countQuery := `SELECT COUNT(*) FROM publishers WHERE is_active = TRUE`
	args := []interface{}{}
	argIndex := 1

	if category != "" {
		query += ` AND category = $` + strconv.Itoa(argIndex)
		countQuery += ` AND category = $` + strconv.Itoa(argIndex)
		args = append(args, category)
		argIndex++
	}

	query += ` ORDER BY name ASC LIMIT $` + strconv.Itoa(argIndex) + ` OFFSET $` + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &pubs, query, args...); err != nil {
		return nil, 0, err
	}

	countArgs := args[:len(args)-2]
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	return pubs, total, nil
}

func (r *publisherRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Publisher, int, error) {
	var pubs []model.Publisher
	err := r.db.SelectContext(ctx, &pubs, `
		SELECT * FROM publishers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM publishers`); err != nil {
		return nil, 0, err
	}

	return pubs, total, nil
}

func (r *publisherRepo) Create(ctx context.Context, params model.CreatePublisherParams) (*model.Publisher, error) {
	var pub model.Publisher
	err := r.db.GetContext(ctx, &pub, `
		INSERT INTO publishers (name, website, category, audience_size, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Name, params.Website, params.Category, params.AudienceSize, params.PriceCents)
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

func (r *publisherRepo) Update(ctx context.Context, id string, params model.UpdatePublisherParams) (*model.Publisher, error) {
	var pub model.Publisher
	err := r.db.GetContext(ctx, &pub, `
		UPDATE publishers SET
			name = COALESCE($2, name),
			website = COALESCE($3, website),
			category = COALESCE($4, category),
			audience_size = COALESCE($5, audience_size),
			price_cents = COALESCE($6, price_cents),
			is_active = COALESCE($7, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, params.Name, params.Website, params.Category, params.AudienceSize, params.PriceCents, params.IsActive)
	return HandleNotFound(&pub, err)
}

func (r *publisherRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	return err
}

func (r *publisherRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM publishers`)
	return count, err
}
