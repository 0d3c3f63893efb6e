package sim

import (
	"math/rand/v2"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// LatencyQueue delays order activation and cancel completion.
// With a zero profile every action is immediate and no randomness is consumed.
type LatencyQueue struct {
	profile domain.LatencyProfile
	rng     *rand.Rand
}

// NewLatencyQueue builds a queue on its own random stream.
func NewLatencyQueue(p domain.LatencyProfile, rng *rand.Rand) *LatencyQueue {
	return &LatencyQueue{profile: p, rng: rng}
}

// SendDelay draws the time until a new order reaches the book.
func (q *LatencyQueue) SendDelay() int64 {
	return q.uniform(q.profile.OrderSendMinUs, q.profile.OrderSendMaxUs)
}

// CancelDelay draws the time until a cancel request takes effect.
func (q *LatencyQueue) CancelDelay() int64 {
	return q.uniform(q.profile.CancelMinUs, q.profile.CancelMaxUs)
}

// Process releases everything due at now: pending orders start resting and
// requested cancels complete.
func (q *LatencyQueue) Process(now int64, l *Ledger) (activated, cancelled int) {
	return l.Activate(now), l.ProcessCancels(now)
}

func (q *LatencyQueue) uniform(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + q.rng.Int64N(hi-lo+1)
}
