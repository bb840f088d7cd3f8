package ratelimit

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ytza/ytza/internal/clock"
)

// Config bounds requests per identifier inside a fixed window.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Named configurations per endpoint class.
var (
	AIGeneration = Config{Window: time.Minute, MaxRequests: 5}
	Payment      = Config{Window: time.Minute, MaxRequests: 10}
	General      = Config{Window: time.Minute, MaxRequests: 30}
	Webhook      = Config{Window: time.Minute, MaxRequests: 100}
)

// Result reports the limiter decision for one call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

type entry struct {
	count     int
	resetTime time.Time
}

// Limiter is a best-effort, single-process fixed-window counter. State is
// lost on restart and there is no coordination across instances.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   clock.Clock
	randFn  func() float64
}

const cleanupProbability = 0.01

func NewLimiter(clk clock.Clock) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		clock:   clk,
		randFn:  rand.Float64,
	}
}

// Check admits or rejects one request for identifier under cfg. The bucket
// key partitions time into fixed windows, so a burst straddling a window
// boundary can see up to 2×MaxRequests admitted.
func (l *Limiter) Check(identifier string, cfg Config) Result {
	now := l.clock.Now()
	bucket := now.UnixMilli() / cfg.Window.Milliseconds()
	key := fmt.Sprintf("%s:%d", identifier, bucket)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.randFn() < cleanupProbability {
		l.cleanupLocked(now, cfg.Window)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &entry{
			resetTime: time.UnixMilli((bucket + 1) * cfg.Window.Milliseconds()).UTC(),
		}
		l.entries[key] = e
	}

	if e.count >= cfg.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetTime: e.resetTime}
	}

	e.count++
	return Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - e.count,
		ResetTime: e.resetTime,
	}
}

// cleanupLocked drops entries whose window ended more than one extra window
// ago. Opportunistic only: memory is not strictly bounded under adversarial
// key cardinality.
func (l *Limiter) cleanupLocked(now time.Time, window time.Duration) {
	for key, e := range l.entries {
		if now.After(e.resetTime.Add(window)) {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
