package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/smallbiznis/roomledger/internal/clock"
)

const sweepThreshold = 4096

// MemoryBucket is a process-local Bucket used when redis is not configured.
type MemoryBucket struct {
	mu      sync.Mutex
	clock   clock.Clock
	buckets map[string]*memoryState
}

type memoryState struct {
	tokens float64
	ts     time.Time
	full   time.Duration
}

func NewMemoryBucket(clk clock.Clock) *MemoryBucket {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &MemoryBucket{clock: clk, buckets: make(map[string]*memoryState)}
}

func (m *MemoryBucket) Take(ctx context.Context, key string, rate float64, burst int) (Result, error) {
	if err := validate(key, rate, burst); err != nil {
		return Result{}, err
	}

	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.buckets) >= sweepThreshold {
		m.sweep(now)
	}

	state, ok := m.buckets[key]
	if !ok {
		state = &memoryState{tokens: float64(burst), ts: now}
		m.buckets[key] = state
	} else {
		elapsed := now.Sub(state.ts).Seconds()
		if elapsed > 0 {
			state.tokens = math.Min(float64(burst), state.tokens+elapsed*rate)
		}
		state.ts = now
	}
	state.full = bucketTTL(rate, burst)

	allowed := state.tokens >= 1
	if allowed {
		state.tokens--
	}
	return Result{
		Allowed:    allowed,
		Limit:      burst,
		Remaining:  int(state.tokens),
		RetryAfter: retryAfter(allowed, state.tokens, rate),
	}, nil
}

// sweep drops buckets that have been idle long enough to be full again.
func (m *MemoryBucket) sweep(now time.Time) {
	for key, state := range m.buckets {
		if now.Sub(state.ts) > state.full {
			delete(m.buckets, key)
		}
	}
}
