package model

import (
	"time"
)

// Admin is the record representing a human administrator. Admin handles are
// human-chosen identifiers, distinct from end-user accounts, and are seeded
// out-of-band (scripts/seed-admin.go).
type Admin struct {
	ID           string     `db:"id" json:"id"`
	AdminID      string     `db:"admin_id" json:"adminId"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName"`
	Email        string     `db:"email" json:"email"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// AdminSession is a server-side session row. The opaque bearer token is never
// stored; only its HMAC-SHA256 hash is. One admin may hold several live
// sessions concurrently (multiple devices).
type AdminSession struct {
	ID        string    `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"`
	AdminID   string    `db:"admin_id" json:"adminId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateAdminSessionParams struct {
	TokenHash string
	AdminID   string
	ExpiresAt time.Time
}

type CreateAdminParams struct {
	AdminID      string
	PasswordHash string
	FullName     string
	Email        string
}
