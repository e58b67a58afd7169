package models

import (
	"time"
)

// GoogleAdsenseToken holds one admin's AdSense OAuth credentials. Tokens are
// stored encrypted.
type GoogleAdsenseToken struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (t *GoogleAdsenseToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
