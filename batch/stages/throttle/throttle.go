// Package throttle rate-limits pipeline throughput, grounded on
// blueprint/provider/ratelimiter.RateLimiter (golang.org/x/time/rate
// underneath).
package throttle

import (
	"context"

	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/ratelimiter"
)

// Processor returns a batch.Stage that blocks until limiter admits the
// record under key, then passes it through unchanged. Every record
// shares one key unless the caller closes over per-record state to
// vary it (e.g. a per-source limiter).
func Processor(limiter *ratelimiter.RateLimiter, key string) batch.Stage {
	return batch.StageFunc(func(ctx context.Context, r batch.Record) (*batch.Record, error) {
		if err := limiter.GetLimiter(key).Wait(ctx); err != nil {
			return nil, batch.NewStageError(batch.KindProcessing, "throttle wait", err)
		}
		return &r, nil
	})
}
