package ratelimit

import (
	"fmt"
	"time"

	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// PressLimiter throttles presses per button with a token bucket refilled
// every minute.
type PressLimiter struct {
	limiter *limiter.TokenBucket
}

func NewPressLimiter(perMinute, burst int) (*PressLimiter, error) {
	if perMinute <= 0 {
		return nil, fmt.Errorf("press rate must be positive, got %d", perMinute)
	}
	if burst < 1 {
		burst = 1
	}

	l, err := limiter.NewTokenBucket(
		limiter.Config{
			Rate:     int64(perMinute),
			Duration: time.Minute,
			Burst:    int64(burst),
		},
		store.NewMemoryStore(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("create token bucket: %w", err)
	}

	return &PressLimiter{limiter: l}, nil
}

func (p *PressLimiter) Allow(button string) bool {
	return p.limiter.Allow("press:" + button)
}

// Unlimited lets every press through. It is used when throttling is off.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
