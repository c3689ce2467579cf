package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoresMessages(t *testing.T) {
	t.Parallel()

	pub := NewMemory()
	id1, err := pub.Publish(context.Background(), "runs", map[string]string{"run": "1"})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id1)

	id2, err := pub.Publish(context.Background(), "runs", "payload")
	require.NoError(t, err)
	require.Equal(t, "memory-2", id2)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "runs", msgs[0].Topic)

	// Messages returns a detached copy.
	msgs[0].Topic = "modified"
	require.Equal(t, "runs", pub.Messages()[0].Topic)
}

func TestNoopPublishReturnsEmptyID(t *testing.T) {
	t.Parallel()

	id, err := Noop{}.Publish(context.Background(), "runs", nil)
	require.NoError(t, err)
	require.Empty(t, id)
}
