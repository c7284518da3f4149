package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []string
	b := New("chrome", 2, time.Minute, WithClock(clock.now), OnStateChange(func(_ string, from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
	}))
	boom := errors.New("boom")
	fail := func() error { return boom }

	assert.ErrorIs(t, b.Do(fail), boom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(fail), boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	clock.t = clock.t.Add(2 * time.Minute)
	assert.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"CLOSED>OPEN", "OPEN>HALF-OPEN", "HALF-OPEN>CLOSED"}, transitions)
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("chrome", 1, time.Second, WithClock(clock.now), OnStateChange(func(string, State, State) {}))
	boom := errors.New("boom")

	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	clock.t = clock.t.Add(2 * time.Second)
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrOpen)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := New("chrome", 2, time.Minute, OnStateChange(func(string, State, State) {}))
	boom := errors.New("boom")
	_ = b.Do(func() error { return boom })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return boom })
	assert.Equal(t, StateClosed, b.State())
}

func TestDisabledBreaker(t *testing.T) {
	b := New("off", 0, time.Minute)
	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	}
	assert.Equal(t, StateClosed, b.State())

	var nilBreaker *Breaker
	assert.NoError(t, nilBreaker.Do(func() error { return nil }))
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	b := New("chrome", 2, time.Minute, OnStateChange(func(string, State, State) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		err := b.DoContext(ctx, func() error { return ctx.Err() })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, StateClosed, b.State())

	boom := errors.New("boom")
	_ = b.DoContext(context.Background(), func() error { return boom })
	_ = b.DoContext(context.Background(), func() error { return boom })
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerAbandonedProbeAllowsNextProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("chrome", 1, time.Second, WithClock(clock.now), OnStateChange(func(string, State, State) {}))
	_ = b.Do(func() error { return errors.New("boom") })
	clock.t = clock.t.Add(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.DoContext(ctx, func() error { return ctx.Err() }), context.Canceled)
	assert.Equal(t, StateHalfOpen, b.State())

	assert.NoError(t, b.DoContext(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}
