package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers payment ids whose approval has already been applied, so
// provider retries can be acknowledged without another gateway lookup. It
// sits in front of the per-order status check and never replaces it.
type Deduper struct {
	rdb     redis.Cmdable
	service string
	ttl     time.Duration
}

func NewDeduper(rdb redis.Cmdable) *Deduper {
	return &Deduper{rdb: rdb, service: ServiceWebhook, ttl: TTLDedup}
}

func (d *Deduper) key(id string) string {
	return fmt.Sprintf(KeyDedup, d.service, id)
}

func (d *Deduper) Seen(ctx context.Context, paymentID string) (bool, error) {
	return Exists(ctx, d.rdb, d.key(paymentID))
}

func (d *Deduper) Mark(ctx context.Context, paymentID string) error {
	return d.rdb.SetNX(ctx, d.key(paymentID), time.Now().UTC().Format(time.RFC3339), d.ttl).Err()
}
