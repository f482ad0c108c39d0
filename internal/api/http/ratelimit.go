package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/citycare/issue-service/internal/auth"
	apperrors "github.com/citycare/issue-service/pkg/util/errorutil"
)

const reportWindow = 24 * time.Hour

// HitCounter counts hits on a key within a window that starts at the first hit.
type HitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}

type redisHitCounter struct {
	client *redis.Client
}

// NewRedisHitCounter counts hits with INCR. The TTL is set only when the key
// has none, in the same MULTI/EXEC as the increment.
func NewRedisHitCounter(client *redis.Client) HitCounter {
	return &redisHitCounter{client: client}
}

func (r *redisHitCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// IssueRateLimiter caps how many issues one user may report per window.
// Counter failures let the request through.
func IssueRateLimiter(counter HitCounter, prefix string, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}

		count, retryAfter, err := counter.Hit(c.UserContext(), prefix+":"+principal.User.ID, reportWindow)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			return c.Next()
		}
		if count > int64(limit) {
			if retryAfter <= 0 {
				retryAfter = reportWindow
			}
			return apperrors.NewRateLimited(int(retryAfter.Seconds()))
		}
		return c.Next()
	}
}
