package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/courierpay/payroll-engine/internal/domain"
)

// previewCache holds payout preview rows in redis for the live-preview use
// case. A nil client disables caching entirely; previews then always hit the
// database.
type previewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newPreviewCache(rdb *redis.Client, ttl time.Duration) *previewCache {
	return &previewCache{rdb: rdb, ttl: ttl}
}

func previewKey(weekID uuid.UUID) string {
	return "payout:preview:" + weekID.String()
}

func (c *previewCache) Get(ctx context.Context, weekID uuid.UUID) ([]*domain.PayoutRow, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	payload, err := c.rdb.Get(ctx, previewKey(weekID)).Bytes()
	if err != nil {
		return nil, false
	}

	var rows []*domain.PayoutRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *previewCache) Set(ctx context.Context, weekID uuid.UUID, rows []*domain.PayoutRow) {
	if c == nil || c.rdb == nil {
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, previewKey(weekID), payload, c.ttl)
}

func (c *previewCache) Invalidate(ctx context.Context, weekIDs ...uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}

	for _, weekID := range weekIDs {
		c.rdb.Del(ctx, previewKey(weekID))
	}
}
