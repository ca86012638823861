package gateway

import (
	"context"
	"time"

	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/redis"
)

const idempotencyScope = "gateway-event"

// IdempotencyGuard fences duplicate gateway event deliveries with a redis
// SetNX marker. When redis is down the guard fails open: the event is
// processed and the status precondition absorbs the duplicate.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) *IdempotencyGuard {
	return &IdempotencyGuard{store: store, ttl: ttl, logg: logg}
}

// CheckAndMark returns true when the event id has not been seen yet and marks
// it as consumed.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) bool {
	if g == nil || g.store == nil {
		return true
	}
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	fresh, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		if g.logg != nil {
			g.logg.Warn(g.logg.WithField(ctx, "event_id", eventID),
				"idempotency store unavailable, processing event anyway")
		}
		return true
	}
	return fresh
}

// Release drops the marker so a failed event can be redelivered later.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) {
	if g == nil || g.store == nil {
		return
	}
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	if err := g.store.Del(ctx, key); err != nil && g.logg != nil {
		g.logg.Warn(g.logg.WithField(ctx, "event_id", eventID),
			"failed to release idempotency marker")
	}
}
