package redisx

import "time"

const (
	// Dedup of settled notifications: dedup:{service}:{id} (id = payment id)
	KeyDedup = "dedup:%s:%s"

	ServiceWebhook = "webhook"
)

var TTLDedup = 48 * time.Hour
