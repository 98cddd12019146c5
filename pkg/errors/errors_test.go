package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerError(t *testing.T) {
	err := NewHandlerError("send-email", "abc", fmt.Errorf("%w: run took too long", ErrExecuteTimeout))

	assert.Equal(t, "job abc (send-email): function exceeded its execution time limit: run took too long", err.Error())
	assert.True(t, errors.Is(err, ErrExecuteTimeout))
	assert.False(t, errors.Is(err, ErrQueueTimeout))

	var he *HandlerError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &he))
	assert.Equal(t, "abc", he.JobID)
}
