package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransient(t *testing.T) {
	base := fmt.Errorf("connection reset")

	assert.Nil(t, Transient(nil))
	assert.True(t, IsTransient(Transient(base)))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", Transient(base))))
	assert.False(t, IsTransient(base))
	assert.ErrorIs(t, Transient(base), base)
	assert.Equal(t, "connection reset", Transient(base).Error())
}

func TestExponential(t *testing.T) {
	e := &Exponential{Initial: time.Second, Max: 5 * time.Second}

	cases := []struct {
		Attempt int
		Expect  time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{40, 5 * time.Second},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("Attempt%d", c.Attempt), func(t *testing.T) {
			assert.Equal(t, c.Expect, e.Delay(c.Attempt))
		})
	}
}

func TestRetryPolicyNext(t *testing.T) {
	assert.Nil(t, NewRetryPolicy(0, time.Second, time.Minute))

	p := &RetryPolicy{MaxRetries: 2, Backoff: &Constant{Interval: 3 * time.Second}}

	d, ok := p.Next(1)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = p.Next(2)
	assert.True(t, ok)

	_, ok = p.Next(3)
	assert.False(t, ok)

	var none *RetryPolicy
	_, ok = none.Next(1)
	assert.False(t, ok)
}
