package sig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindSlotPublishes(t *testing.T) {
	t.Parallel()
	s := New()
	ctx, sl, err := BindSlot(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, sl)

	// Nested frames derived from ctx observe the same slot.
	nested := context.WithValue(ctx, struct{}{}, "deeper")
	assert.Same(t, sl, CurrentSlot(nested))
}

func TestBindSlotTwiceIsError(t *testing.T) {
	t.Parallel()
	ctx, _, err := BindSlot(context.Background(), New())
	require.NoError(t, err)

	_, _, err = BindSlot(ctx, New())
	assert.ErrorIs(t, err, ErrSlotBound)
}

func TestCurrentSlotUnbound(t *testing.T) {
	t.Parallel()
	assert.Nil(t, CurrentSlot(context.Background()))
}

func TestWithSlotShadowsAncestor(t *testing.T) {
	t.Parallel()
	outer := NewSlot(New())
	inner := NewSlot(New())

	ctx := WithSlot(context.Background(), outer)
	child := WithSlot(ctx, inner)

	assert.Same(t, outer, CurrentSlot(ctx))
	assert.Same(t, inner, CurrentSlot(child))
}

func TestForbidSignalDestroysSlot(t *testing.T) {
	t.Parallel()
	s := New()
	ctx, sl, err := BindSlot(context.Background(), s)
	require.NoError(t, err)

	require.True(t, sl.Emplace(Terminate, func(uint64, *Signal) {
		t.Error("pending handler must be discarded, not fired")
	}))

	require.True(t, ForbidSignal(ctx))
	s.Emit(Terminate)

	assert.Nil(t, CurrentSlot(ctx), "the same frame observes no slot after detach")
	nested := context.WithValue(ctx, struct{}{}, "deeper")
	assert.Nil(t, CurrentSlot(nested), "descendants observe no slot either")

	assert.False(t, ForbidSignal(ctx), "nothing left to destroy")
}

func TestForbidSignalWithoutBinding(t *testing.T) {
	t.Parallel()
	assert.False(t, ForbidSignal(context.Background()))
}

func TestRebindAfterForbid(t *testing.T) {
	t.Parallel()
	ctx, _, err := BindSlot(context.Background(), New())
	require.NoError(t, err)
	ForbidSignal(ctx)

	// The destroyed binding no longer counts as live.
	_, sl, err := BindSlot(ctx, New())
	require.NoError(t, err)
	assert.NotNil(t, sl)
}
