package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ytza/ytza/internal/clock"
)

func newTestLimiter(clk clock.Clock) *Limiter {
	l := NewLimiter(clk)
	l.randFn = func() float64 { return 1 } // disable opportunistic cleanup
	return l
}

func TestCheckRejectsBeyondMax(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLimiter(clk)
	cfg := Config{Window: time.Minute, MaxRequests: 5}

	for i := 0; i < 5; i++ {
		res := l.Check("user-1", cfg)
		assert.True(t, res.Allowed, "request %d should pass", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res := l.Check("user-1", cfg)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestCheckWindowRollover(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLimiter(clk)
	cfg := Config{Window: time.Minute, MaxRequests: 2}

	assert.True(t, l.Check("user-1", cfg).Allowed)
	assert.True(t, l.Check("user-1", cfg).Allowed)
	assert.False(t, l.Check("user-1", cfg).Allowed)

	clk.Advance(time.Minute)

	res := l.Check("user-1", cfg)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestCheckIdentifiersIsolated(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLimiter(clk)
	cfg := Config{Window: time.Minute, MaxRequests: 1}

	assert.True(t, l.Check("user-1", cfg).Allowed)
	assert.False(t, l.Check("user-1", cfg).Allowed)
	assert.True(t, l.Check("user-2", cfg).Allowed)
}

func TestResetTimeIsWindowEnd(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	clk := clock.NewFakeClock(start)
	l := newTestLimiter(clk)
	cfg := Config{Window: time.Minute, MaxRequests: 5}

	res := l.Check("user-1", cfg)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), res.ResetTime)
}

func TestCleanupEvictsExpiredEntries(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := NewLimiter(clk)
	l.randFn = func() float64 { return 0 } // force cleanup on every call
	cfg := Config{Window: time.Minute, MaxRequests: 5}

	for i := 0; i < 10; i++ {
		l.Check(fmt.Sprintf("user-%d", i), cfg)
	}
	assert.Equal(t, 10, l.size())

	// entries are kept for one extra window past expiry
	clk.Advance(90 * time.Second)
	l.Check("late-caller", cfg)
	assert.Equal(t, 11, l.size())

	clk.Advance(2 * time.Minute)
	l.Check("late-caller", cfg)
	assert.Equal(t, 1, l.size()) // only the fresh bucket survives
}
