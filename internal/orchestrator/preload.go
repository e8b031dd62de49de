package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"assistd/internal/catalog"
)

// Preload warms up the primary driver and the first fallback concurrently so
// the first request does not pay the load cost. Load failures are returned
// but the process still comes up; requests fall through the chain as usual.
func (o *Orchestrator) Preload(ctx context.Context) error {
	o.warming.Store(true)
	defer o.warming.Store(false)
	snap, err := o.probe()
	if err != nil {
		return fmt.Errorf("resource probe: %w", err)
	}
	chain, err := o.sel.Select(snap, catalog.Request{
		Domain:     catalog.DomainGeneral,
		Complexity: "medium",
	})
	if err != nil {
		return err
	}
	if len(chain) > 2 {
		chain = chain[:2]
	}
	// A plain group: one failed load must not cancel the sibling's warm-up,
	// it only surfaces in the returned error.
	var g errgroup.Group
	for _, desc := range chain {
		desc := desc
		g.Go(func() error {
			return o.drivers.For(desc).Load(ctx)
		})
	}
	return g.Wait()
}
