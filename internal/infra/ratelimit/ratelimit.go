// Package ratelimit keeps one token bucket per client key in a bounded LRU.
package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

type PerKey struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *visitor]
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// New returns a limiter allowing limit events per second with the given burst.
// Keys idle for longer than ttl start over with a full bucket; at most
// cacheSize keys are tracked, least recently seen first out.
func New(limit, burst, cacheSize int, ttl time.Duration) *PerKey {
	if cacheSize <= 0 {
		cacheSize = 10_000
	}
	visitors, _ := lru.New[string, *visitor](cacheSize)
	return &PerKey{
		visitors: visitors,
		limit:    rate.Limit(limit),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (p *PerKey) Allow(key string) bool {
	now := p.now()

	p.mu.Lock()
	v, ok := p.visitors.Get(key)
	if !ok || (p.ttl > 0 && now.Sub(v.last) > p.ttl) {
		v = &visitor{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.visitors.Add(key, v)
	}
	v.last = now
	p.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Len reports how many keys are currently tracked.
func (p *PerKey) Len() int {
	return p.visitors.Len()
}
