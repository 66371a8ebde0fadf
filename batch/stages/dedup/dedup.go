// Package dedup drops records already seen within a TTL window, grounded
// on blueprint/provider/kv.KV (in-process by default via kv.NewMemoryKV,
// swappable for any other KV implementation).
package dedup

import (
	"context"
	"time"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/kv"
)

// KeyFunc extracts the dedup key from a record. A typical key is a
// content hash or an upstream message id carried in the payload.
type KeyFunc func(r batch.Record) string

// SourceSequenceKey keys on "<source>:<sequenceNumber>", useful mainly
// for tests; real deployments should key on payload identity instead.
func SourceSequenceKey(r batch.Record) string {
	return r.Header.Source + ":" + formatUint(r.Header.SequenceNumber)
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// permanentTTL stands in for "never expire": kv.KV's Set (no ttl) stores
// a zero-value created timestamp, which memkv.Get then treats as
// already-expired on the very next lookup. SetTTL with a long duration
// sidesteps that and is what every call below uses.
const permanentTTL = 100 * 365 * 24 * time.Hour

// Filter returns a batch.Stage that filters out any record whose key
// (per keyFunc) was already seen within ttl. ttl <= 0 means "seen
// forever" for practical purposes.
func Filter(store kv.KV, keyFunc KeyFunc, ttl time.Duration) batch.Stage {
	if ttl <= 0 {
		ttl = permanentTTL
	}
	return batch.StageFunc(func(_ context.Context, r batch.Record) (*batch.Record, error) {
		key := keyFunc(r)
		seen, err := store.Get(key)
		if err != nil {
			return nil, batch.NewStageError(batch.KindProcessing, "dedup lookup", err)
		}
		if seen != nil {
			return nil, nil
		}
		if err := store.SetTTL(key, []byte{1}, ttl); err != nil {
			return nil, batch.NewStageError(batch.KindProcessing, "dedup mark seen", err)
		}
		return &r, nil
	})
}
