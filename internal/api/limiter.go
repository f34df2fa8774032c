package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// callbackLimiter keeps a token bucket per callback.
type callbackLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[int64]*rate.Limiter
}

func newCallbackLimiter(limit rate.Limit, burst int) *callbackLimiter {
	return &callbackLimiter{
		limit:    limit,
		burst:    burst,
		limiters: map[int64]*rate.Limiter{},
	}
}

func (c *callbackLimiter) allow(callbackID int64) bool {
	c.mu.Lock()
	l, ok := c.limiters[callbackID]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[callbackID] = l
	}
	c.mu.Unlock()

	return l.Allow()
}
