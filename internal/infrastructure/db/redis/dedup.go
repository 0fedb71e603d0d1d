package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obralink/marketplace/internal/api/metrics"
)

const defaultDedupTTL = time.Hour

// DedupChecker provides idempotency checks for feed events backed by Redis.
// Every API process owns its own hub, so keys are scoped per instance.
// Key format: dedup:feed:<instance_id>:<project_id>:<message_id>
type DedupChecker struct {
	client   *redis.Client
	instance string
	ttl      time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
// Keys expire after ttl, or one hour when ttl is not positive.
func NewDedupChecker(client *redis.Client, instanceID string, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DedupChecker{client: client, instance: instanceID, ttl: ttl}
}

// IsDuplicate reports whether this message event has already been delivered.
func (d *DedupChecker) IsDuplicate(ctx context.Context, projectID, messageID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(projectID, messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if n > 0 {
		metrics.FeedDedupTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.FeedDedupTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that this event has been delivered.
func (d *DedupChecker) Mark(ctx context.Context, projectID, messageID string) error {
	return d.client.Set(ctx, d.key(projectID, messageID), "1", d.ttl).Err()
}

func (d *DedupChecker) key(projectID, messageID string) string {
	return fmt.Sprintf("dedup:feed:%s:%s:%s", d.instance, projectID, messageID)
}
