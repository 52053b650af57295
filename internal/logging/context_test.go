package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_RoundTrip(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	ctx := ContextWithLogger(context.Background(), l)
	FromContext(ctx).Info("hello", zap.String("order_id", "o1"))

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "o1", logs.All()[0].ContextMap()["order_id"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, zap.L(), FromContext(context.Background()))
	assert.Equal(t, context.Background(), ContextWithLogger(context.Background(), nil))
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Same(t, zap.L(), FromContextOr(context.Background(), nil))

	l := zap.NewExample()
	assert.Same(t, l, FromContextOr(ContextWithLogger(context.Background(), l), fallback))
}
