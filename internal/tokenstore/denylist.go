package tokenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:refresh:"

// Denylist tracks refresh-token ids that were consumed by a rotation and
// must not be accepted again. Entries live exactly as long as the token
// they invalidate could otherwise remain valid.
type Denylist struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewDenylist(redisClient redis.UniversalClient, ttl time.Duration) *Denylist {
	return &Denylist{redis: redisClient, ttl: ttl}
}

// Deny records the jti as unusable.
func (d *Denylist) Deny(ctx context.Context, jti string) error {
	return d.redis.Set(ctx, denylistPrefix+jti, "1", d.ttl).Err()
}

// IsDenied reports whether the jti has been denylisted.
func (d *Denylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	n, err := d.redis.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
