// Package health runs named dependency probes for the HTTP and gRPC health endpoints.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

type Probe func(ctx context.Context) error

// Report is safe to publish: Checks only says up or down. The underlying
// errors stay in Errors for logging.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   int64             `json:"time"`

	Errors map[string]error `json:"-"`
}

func (r Report) Healthy() bool { return r.Status == StatusUp }

type Checker struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{probes: make(map[string]Probe), timeout: timeout}
}

func (c *Checker) Add(name string, p Probe) *Checker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
	return c
}

// Check runs every probe concurrently, each bounded by the checker timeout.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	results := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		c.mu.RLock()
		probe := c.probes[name]
		c.mu.RUnlock()

		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			results[i] = probe(pctx)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Status: StatusUp, Checks: make(map[string]string, len(names)), Time: time.Now().Unix()}
	for i, name := range names {
		if results[i] == nil {
			rep.Checks[name] = StatusUp
			continue
		}
		rep.Checks[name] = StatusDown
		rep.Status = StatusDown
		if rep.Errors == nil {
			rep.Errors = make(map[string]error)
		}
		rep.Errors[name] = results[i]
	}
	return rep
}
