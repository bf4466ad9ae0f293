package model

import (
	"time"
)

type Order struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"userId"`
	ArticleID   string      `db:"article_id" json:"articleId"`
	PublisherID string      `db:"publisher_id" json:"publisherId"`
	AmountCents int         `db:"amount_cents" json:"amountCents"`
	Status      OrderStatus `db:"status" json:"status"`
	PaidAt      *time.Time  `db:"paid_at" json:"paidAt,omitempty"`
	PublishedAt *time.Time  `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

type CreateOrderParams struct {
	UserID      string
	ArticleID   string
	PublisherID string
	AmountCents int
}
