package tasklocal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()
	k := NewKey[int]("answer")
	ctx := k.With(context.Background(), 42)

	v, ok := k.From(ctx)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestKeysAreDistinctByIdentity(t *testing.T) {
	t.Parallel()
	k1 := NewKey[string]("shared-name")
	k2 := NewKey[string]("shared-name")

	ctx := k1.With(context.Background(), "one")
	_, ok := k2.From(ctx)
	assert.False(t, ok, "same name on a different key must not find the value")
}

func TestFromMissing(t *testing.T) {
	t.Parallel()
	k := NewKey[struct{ n int }]("missing")
	v, ok := k.From(context.Background())
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestWithShadows(t *testing.T) {
	t.Parallel()
	k := NewKey[int]("depth")
	ctx := k.With(context.Background(), 1)
	child := k.With(ctx, 2)

	v, _ := k.From(ctx)
	assert.Equal(t, 1, v)
	v, _ = k.From(child)
	assert.Equal(t, 2, v)
}

func TestName(t *testing.T) {
	t.Parallel()
	k := NewKey[int]("metrics")
	assert.Equal(t, "metrics", k.Name())
	assert.Equal(t, "tasklocal.Key(metrics)", k.String())
}
