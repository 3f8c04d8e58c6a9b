package deployment

import (
	"context"
	"sync"
)

// gate serializes orchestration runs per chain. A caller that finds a run
// in flight waits for it to settle, swallows its outcome, and re-evaluates
// state from scratch rather than reusing the first run's result: the second
// caller's required contract set may differ, and a fresh pass gives it a
// consistent idempotent view.
type gate struct {
	mu       sync.Mutex
	inflight map[uint64]chan struct{}
}

func newGate() *gate {
	return &gate{inflight: make(map[uint64]chan struct{})}
}

// do runs fn for chainID, guaranteeing at most one in-flight run per chain.
// The in-flight entry is published before fn does any I/O and removed when
// fn settles, regardless of outcome.
func (g *gate) do(ctx context.Context, chainID uint64, fn func(context.Context) (*Result, error)) (*Result, error) {
	for {
		g.mu.Lock()
		if settled, ok := g.inflight[chainID]; ok {
			g.mu.Unlock()
			select {
			case <-settled:
				// The first run's error is irrelevant here; only the
				// resulting chain state matters. Loop and evaluate fresh.
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		settled := make(chan struct{})
		g.inflight[chainID] = settled
		g.mu.Unlock()

		return func() (*Result, error) {
			defer func() {
				g.mu.Lock()
				delete(g.inflight, chainID)
				g.mu.Unlock()
				close(settled)
			}()
			return fn(ctx)
		}()
	}
}
