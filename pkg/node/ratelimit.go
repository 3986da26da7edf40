package node

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound vendor calls for a node. A nil limiter
// never blocks, so nodes can carry one unconditionally.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token-bucket limiter allowing requestsPerSec
// sustained with a burst of twice that, matching how the host paces
// chatty integrations. Zero or negative rates disable limiting.
func NewRateLimiter(requestsPerSec float64) *RateLimiter {
	if requestsPerSec <= 0 {
		return nil
	}
	burst := int(requestsPerSec * 2)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSec), burst)}
}

// Wait blocks until a token is available or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.limiter == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}
