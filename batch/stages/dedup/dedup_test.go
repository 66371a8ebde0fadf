package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyByPayload(r batch.Record) string {
	return r.Payload.(string)
}

func TestFilterDropsRepeatedKey(t *testing.T) {
	store := kv.NewMemoryKV()
	stage := Filter(store, keyByPayload, time.Minute)

	rec := batch.NewRecord(1, "test", "same-key")

	first, err := stage.Process(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := stage.Process(context.Background(), rec)
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestFilterPassesDistinctKeys(t *testing.T) {
	store := kv.NewMemoryKV()
	stage := Filter(store, keyByPayload, time.Minute)

	a, err := stage.Process(context.Background(), batch.NewRecord(1, "test", "a"))
	require.NoError(t, err)
	assert.NotNil(t, a)

	b, err := stage.Process(context.Background(), batch.NewRecord(2, "test", "b"))
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestFilterZeroTTLStillDedupsAcrossCalls(t *testing.T) {
	store := kv.NewMemoryKV()
	stage := Filter(store, keyByPayload, 0)

	rec := batch.NewRecord(1, "test", "same-key")

	first, err := stage.Process(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := stage.Process(context.Background(), rec)
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestSourceSequenceKey(t *testing.T) {
	rec := batch.NewRecord(42, "feed-a", "payload")
	assert.Equal(t, "feed-a:42", SourceSequenceKey(rec))
}
