package model

import (
	"time"
)

type Publisher struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Website      string    `db:"website" json:"website"`
	Category     string    `db:"category" json:"category"`
	AudienceSize int       `db:"audience_size" json:"audienceSize"`
	PriceCents   int       `db:"price_cents" json:"priceCents"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type CreatePublisherParams struct {
	Name         string
	Website      string
	Category     string
	AudienceSize int
	PriceCents   int
}

type UpdatePublisherParams struct {
	Name         *string
	Website      *string
	Category     *string
	AudienceSize *int
	PriceCents   *int
	IsActive     *bool
}
