package engine

import (
	"context"
	"math/rand/v2"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Simulator is the minimal surface the orchestration layer needs from a run.
// Decouples the runner from the concrete *sim.Engine.
type Simulator interface {
	Run(ctx context.Context) (*domain.Metrics, error)
	Fills() []domain.Fill
}

// Factory builds a Simulator from a validated or unvalidated RunConfig.
type Factory func(cfg domain.RunConfig) (Simulator, error)

// Stream identifies an independent random stream derived from the run seed.
type Stream uint64

const (
	StreamMarket Stream = iota + 1
	StreamMatching
	StreamLatency
)

// String implements fmt.Stringer.
func (s Stream) String() string {
	switch s {
	case StreamMarket:
		return "market"
	case StreamMatching:
		return "matching"
	case StreamLatency:
		return "latency"
	default:
		return "unknown"
	}
}

// NewStream returns a PCG generator keyed by (seed, stream). Two streams of the
// same seed never share state, so consuming more latency draws cannot shift the
// market path.
func NewStream(seed uint64, s Stream) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(s)))
}

// TruncateStr trunca un string a maxLen caracteres añadiendo "..." si es necesario.
func TruncateStr(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
