package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)
	fail := func() error { return errRedisDown }

	assert.ErrorIs(t, cb.Execute(fail), errRedisDown)
	assert.Equal(t, BreakerClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errRedisDown)
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)

	_ = cb.Execute(func() error { return errRedisDown })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errRedisDown })
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := time.Now()
	cb := newTestBreaker(&clock)
	fail := func() error { return errRedisDown }
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	require.Equal(t, BreakerOpen, cb.State())

	clock = clock.Add(time.Minute)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, BreakerOpen, cb.State(), "a failed probe reopens immediately")

	clock = clock.Add(time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestNilCacheIsAlwaysEmpty(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest map[string]int
	c.SetJSON(ctx, "k", map[string]int{"a": 1})
	assert.False(t, c.GetJSON(ctx, "k", &dest))
	c.Delete(ctx, "k")
	assert.Equal(t, "disabled", c.State())
	assert.Nil(t, NewCache(nil, time.Minute, nil))
}
