package openmeteo

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// adaptiveLimiter raises the request rate by 20% per success, up to twice
// the initial rate, and halves it on 429, down to a quarter.
type adaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	maxRate rate.Limit
	minRate rate.Limit
	current rate.Limit
}

func newAdaptiveLimiter(initial rate.Limit, burst int) *adaptiveLimiter {
	return &adaptiveLimiter{
		limiter: rate.NewLimiter(initial, max(burst, 1)),
		maxRate: initial * 2,
		minRate: initial / 4,
		current: initial,
	}
}

func (a *adaptiveLimiter) wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *adaptiveLimiter) onSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = min(a.current*1.2, a.maxRate)
	a.limiter.SetLimit(a.current)
}

func (a *adaptiveLimiter) onRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = max(a.current*0.5, a.minRate)
	a.limiter.SetLimit(a.current)
	zap.L().Warn("openmeteo: reducing request rate after 429",
		zap.Float64("new_rate", float64(a.current)),
	)
}

func (a *adaptiveLimiter) limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
