package models

import (
	"encoding/json"
	"time"
)

type AnalyticsCache struct {
	CacheKey  string          `db:"cache_key" json:"cache_key"`
	Data      json.RawMessage `db:"data" json:"data"`
	ExpiresAt time.Time       `db:"expires_at" json:"expires_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

func (c *AnalyticsCache) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
