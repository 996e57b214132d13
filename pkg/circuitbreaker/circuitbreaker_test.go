package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUnavailable = errors.New("redis: connection refused")
	errMiss        = errors.New("cache miss")
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("rating-cache", cfg)
	cb.now = clock.Now
	cb.expiry = clock.Now().Add(cb.interval)
	return cb, clock
}

func fail() error    { return errUnavailable }
func succeed() error { return nil }

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("x", Config{})
	assert.Equal(t, uint32(1), cb.maxRequests)
	assert.Equal(t, 60*time.Second, cb.interval)
	assert.Equal(t, 30*time.Second, cb.timeout)
	assert.Equal(t, "x", cb.Name())
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(Config{})

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errUnavailable)
	}
	assert.Equal(t, StateClosed, cb.State(), "4次失败不熔断")

	assert.ErrorIs(t, cb.Execute(fail), errUnavailable)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断器打开时不应该调用实际函数")
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(Config{})

	for i := 0; i < 4; i++ {
		_ = cb.Execute(fail)
	}
	require.NoError(t, cb.Execute(succeed))
	for i := 0; i < 4; i++ {
		_ = cb.Execute(fail)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	cb, _ := newTestBreaker(Config{
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errMiss)
		},
	})

	// 缓存未命中不算失败
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errMiss }), errMiss)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	t.Run("探测成功后关闭", func(t *testing.T) {
		cb, clock := newTestBreaker(Config{Timeout: time.Second})
		for i := 0; i < 5; i++ {
			_ = cb.Execute(fail)
		}
		require.Equal(t, StateOpen, cb.State())

		clock.Advance(2 * time.Second)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(succeed))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("探测失败后重新打开", func(t *testing.T) {
		cb, clock := newTestBreaker(Config{Timeout: time.Second})
		for i := 0; i < 5; i++ {
			_ = cb.Execute(fail)
		}
		clock.Advance(2 * time.Second)

		_ = cb.Execute(fail)
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestCircuitBreaker_IntervalResetsCounts(t *testing.T) {
	cb, clock := newTestBreaker(Config{Interval: 10 * time.Second})

	for i := 0; i < 4; i++ {
		_ = cb.Execute(fail)
	}
	clock.Advance(11 * time.Second)
	_ = cb.Execute(fail)

	assert.Equal(t, StateClosed, cb.State(), "窗口到期后计数清零")
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb, _ := newTestBreaker(Config{
		Interval: time.Hour,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	for i := 0; i < 10; i++ {
		if i < 4 {
			_ = cb.Execute(succeed)
		} else {
			_ = cb.Execute(fail)
		}
	}
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var changes []string
	cb, clock := newTestBreaker(Config{
		Timeout: time.Second,
		OnStateChange: func(name string, from State, to State) {
			changes = append(changes, from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(fail)
	}
	clock.Advance(2 * time.Second)
	_ = cb.Execute(succeed)

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, changes)
}

func TestCircuitBreaker_ExecuteContext(t *testing.T) {
	cb, _ := newTestBreaker(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := cb.ExecuteContext(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Equal(t, uint32(0), cb.Counts().Requests, "取消的请求不计入统计")
}

func BenchmarkCircuitBreaker(b *testing.B) {
	cb := NewCircuitBreaker("bench", Config{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(succeed)
	}
}
