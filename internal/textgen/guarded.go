package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/finsightlabs/finsight/internal/circuitbreaker"
)

// ErrCircuitOpen is returned when the completion circuit is open and
// the call was skipped. Callers fall back to static text, same as for
// any other completion failure.
var ErrCircuitOpen = errors.New("completion circuit open")

const breakerKey = "textgen"

// Guarded wraps a Completer with a circuit breaker. After a run of
// consecutive failures the upstream is given a cooldown before the
// next probe, so a degraded model API does not add latency to every
// risk assessment in the meantime.
type Guarded struct {
	inner   Completer
	breaker *circuitbreaker.Breaker
}

// NewGuarded wraps inner with a circuit breaker that opens after
// threshold consecutive failures and probes again after cooldown.
func NewGuarded(inner Completer, threshold int, cooldown time.Duration) *Guarded {
	return &Guarded{
		inner:   inner,
		breaker: circuitbreaker.New(threshold, cooldown),
	}
}

// Compile-time interface check
var _ Completer = (*Guarded)(nil)

func (g *Guarded) Complete(ctx context.Context, prompt string) (string, error) {
	if !g.breaker.Allow(breakerKey) {
		return "", ErrCircuitOpen
	}

	out, err := g.inner.Complete(ctx, prompt)
	if err != nil {
		// A cancelled caller says nothing about upstream health.
		if !errors.Is(err, context.Canceled) {
			g.breaker.RecordFailure(breakerKey)
		}
		return "", err
	}

	g.breaker.RecordSuccess(breakerKey)
	return out, nil
}
