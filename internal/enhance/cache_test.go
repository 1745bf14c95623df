package enhance

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetThenGetWithinTTL(t *testing.T) {
	ctx := context.Background()
	fc := clockwork.NewFakeClockAt(testStart)
	c := NewCache[Enhancement](newMemStore(), time.Hour, fc)
	want := Enhancement{Text: "Sunny and mild.", Tips: []string{"Sunglasses."}}

	require.NoError(t, c.Set(ctx, "k", want))
	fc.Advance(59 * time.Minute)

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCache_GetAfterTTLDeletesEntry(t *testing.T) {
	ctx := context.Background()
	fc := clockwork.NewFakeClockAt(testStart)
	store := newMemStore()
	c := NewCache[Enhancement](store, time.Hour, fc)

	require.NoError(t, c.Set(ctx, "k", Enhancement{Text: "old"}))
	fc.Advance(time.Hour)

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, got)
	assert.False(t, store.has("k"), "expired entry removed on read")
}

func TestCache_GetMiss(t *testing.T) {
	c := NewCache[Enhancement](newMemStore(), time.Hour, nil)

	_, ok, err := c.Get(context.Background(), "absent")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_StoreErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errStoreDown
	store.setErr = errStoreDown
	c := NewCache[Enhancement](store, time.Hour, nil)

	_, _, err := c.Get(context.Background(), "k")
	require.ErrorIs(t, err, errStoreDown)

	err = c.Set(context.Background(), "k", Enhancement{Text: "x"})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestCache_GetCorruptEntry(t *testing.T) {
	fc := clockwork.NewFakeClockAt(testStart)
	store := newMemStore()
	store.entries["k"] = Entry{Timestamp: testStart, Data: json.RawMessage(`"not an object"`)}
	c := NewCache[Enhancement](store, time.Hour, fc)

	_, ok, err := c.Get(context.Background(), "k")

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCache_SweepAbsoluteCeiling(t *testing.T) {
	ctx := context.Background()
	fc := clockwork.NewFakeClockAt(testStart)
	store := newMemStore()
	c := NewCache[Enhancement](store, time.Hour, fc)

	require.NoError(t, c.Set(ctx, "old", Enhancement{Text: "a"}))
	fc.Advance(20 * time.Hour)
	require.NoError(t, c.Set(ctx, "recent", Enhancement{Text: "b"}))
	fc.Advance(5 * time.Hour)

	removed, err := c.Sweep(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, store.has("old"))
	assert.True(t, store.has("recent"), "entries past TTL but under the ceiling survive the sweep")
}
