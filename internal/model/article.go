package model

import (
	"time"
)

type Article struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"userId"`
	Title       string        `db:"title" json:"title"`
	Body        string        `db:"body" json:"body"`
	WordCount   int           `db:"word_count" json:"wordCount"`
	Status      ArticleStatus `db:"status" json:"status"`
	AIGenerated bool          `db:"ai_generated" json:"aiGenerated"`
	AIModel     *string       `db:"ai_model" json:"aiModel,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

type CreateArticleParams struct {
	UserID      string
	Title       string
	Body        string
	WordCount   int
	AIGenerated bool
	AIModel     *string
}

type UpdateArticleParams struct {
	Title     *string
	Body      *string
	WordCount *int
}
