package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, context.Background(), ContextWithLogger(context.Background(), nil))
}

func TestOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	attached := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Same(t, fallback, Or(context.Background(), fallback))
	assert.Same(t, attached, Or(ContextWithLogger(context.Background(), attached), fallback))
	assert.NotNil(t, Or(context.Background(), nil))
}
