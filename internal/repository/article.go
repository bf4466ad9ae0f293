package repository

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/articleai/articleai-server/internal/database"
	"github.com/articleai/articleai-server/internal/model"
)

type ArticleRepository interface {
	FindByID(ctx context.Context, id string) (*model.Article, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Article, int, error)
	FindAll(ctx context.Context, status string, limit, offset int) ([]model.Article, int, error)
	Create(ctx context.Context, params model.CreateArticleParams) (*model.Article, error)
	Update(ctx context.Context, id string, params model.UpdateArticleParams) (*model.Article, error)
	SetStatus(ctx context.Context, id string, status model.ArticleStatus) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status model.ArticleStatus) (int, error)
	WithTx(tx *sqlx.Tx) ArticleRepository
}

type articleRepo struct {
	db database.DBTX
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func (r *articleRepo) WithTx(tx *sqlx.Tx) ArticleRepository {
	return &articleRepo{db: tx}
}

func (r *articleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	err := r.db.GetContext(ctx, &article, `SELECT * FROM articles WHERE id = $1`, id)
	return HandleNotFound(&article, err)
}

func (r *articleRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Article, int, error) {
	var articles []model.Article
	err := r.db.SelectContext(ctx, &articles, `
		SELECT * FROM articles
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM articles WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *articleRepo) FindAll(ctx context.Context, status string, limit, offset int) ([]model.Article, int, error) {
	var articles []model.Article
	var total int

	query := `SELECT * FROM articles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM articles WHERE 1=1`
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

	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, 0, err
	}

	countArgs := args[:len(args)-2]
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *articleRepo) Create(ctx context.Context, params model.CreateArticleParams) (*model.Article, error) {
	var article model.Article
	err := r.db.GetContext(ctx, &article, `
		INSERT INTO articles (user_id, title, body, word_count, ai_generated, ai_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.UserID, params.Title, params.Body, params.WordCount, params.AIGenerated, params.AIModel)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) Update(ctx context.Context, id string, params model.UpdateArticleParams) (*model.Article, error) {
	var article model.Article
	err := r.db.GetContext(ctx, &article, `
		UPDATE articles SET
			title = COALESCE($2, title),
			body = COALESCE($3, body),
			word_count = COALESCE($4, word_count),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, params.Title, params.Body, params.WordCount)
	return HandleNotFound(&article, err)
}

func (r *articleRepo) SetStatus(ctx context.Context, id string, status model.ArticleStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE articles SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	return err
}

func (r *articleRepo) CountByStatus(ctx context.Context, status model.ArticleStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles WHERE status = $1`, status)
	return count, err
}
