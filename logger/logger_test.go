package logger

import (
	"bytes"
	"context"
	"testing"

	c "eventspot/context"

	"github.com/stretchr/testify/assert"
)

func TestErrorfEscapesNewlinesAndTagsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	ctx := c.NewContext("abc.123")
	Errorf(ctx, "first line\nsecond line")

	out := buf.String()
	assert.Contains(t, out, `first line\\n second line`)
	assert.Contains(t, out, "correlation_id=abc.123")
}

func TestAttemptIDIsLoggedWhenPresent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	ctx := c.SetContextWithValue(context.Background(), c.ContextKeyAttemptID, "att-1")
	Warnf(ctx, "checkout dismissed")

	assert.Contains(t, buf.String(), "attempt_id=att-1")
}

func TestSetLevelFallsBackToInfo(t *testing.T) {
	SetLevel("nonsense")
	assert.Equal(t, "info", logger.GetLevel().String())

	SetLevel("debug")
	assert.Equal(t, "debug", logger.GetLevel().String())
	SetLevel("info")
}
