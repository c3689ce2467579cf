package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_TTLSemantics(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	m := NewMemory(100 * time.Millisecond)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v"))

	// Within TTL the entry is fresh.
	now = now.Add(50 * time.Millisecond)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	// At and past the TTL the entry reads as absent.
	now = now.Add(100 * time.Millisecond)
	_, ok = m.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemory_ExpiredEntryIsEvictedLazily(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	m := NewMemory(time.Millisecond)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v"))
	require.Equal(t, 1, m.Len())

	now = now.Add(time.Second)
	_, ok := m.Get(ctx, "k")
	require.False(t, ok)
	require.Zero(t, m.Len())
}

func TestMemory_ExpiredWindowIsReadConsistent(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	m := NewMemory(100 * time.Millisecond)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Put(ctx, "k", []byte("v"))
	now = now.Add(100 * time.Millisecond)

	// Two readers in the expired-but-resident window both observe absent.
	_, ok1 := m.Get(ctx, "k")
	_, ok2 := m.Get(ctx, "k")
	require.False(t, ok1)
	require.False(t, ok2)
}

func TestMemory_MissingKey(t *testing.T) {
	t.Parallel()
	m := NewMemory(time.Minute)
	_, ok := m.Get(context.Background(), "absent")
	require.False(t, ok)
}

func TestMemory_PutOverwrites(t *testing.T) {
	t.Parallel()
	m := NewMemory(time.Minute)
	ctx := context.Background()

	m.Put(ctx, "k", []byte("old"))
	m.Put(ctx, "k", []byte("new"))
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
	require.Equal(t, 1, m.Len())
}
