package driver

import (
	"sort"
	"sync"

	"assistd/internal/catalog"
)

// Pool hands out at most one driver per set of loaded weights. Descriptors
// with a weights alias share the driver of the entry they alias, so the same
// snapshot is never resident twice.
type Pool struct {
	mode string
	opts Options

	mu      sync.Mutex
	byKey   map[string]Generator
	builder func(mode string, desc catalog.Descriptor, opts Options) Generator
}

// NewPool creates a pool. Mode overrides every descriptor's load hint when
// non-empty.
func NewPool(mode string, opts Options) *Pool {
	return &Pool{mode: mode, opts: opts, byKey: make(map[string]Generator), builder: New}
}

func weightsKey(desc catalog.Descriptor) string {
	if desc.WeightsAlias != "" {
		return desc.WeightsAlias
	}
	return desc.ID
}

// For returns the driver serving the descriptor's weights, creating it on
// first use. Aliased descriptors receive the aliased entry's driver.
func (p *Pool) For(desc catalog.Descriptor) Generator {
	key := weightsKey(desc)
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.byKey[key]; ok {
		return g
	}
	g := p.builder(p.mode, desc, p.opts)
	p.byKey[key] = g
	return g
}

// Loaded returns the driver for a model id if one exists, resolving aliases
// through the catalog descriptors given.
func (p *Pool) Loaded(id string, descs []catalog.Descriptor) (Generator, bool) {
	key := id
	for _, d := range descs {
		if d.ID == id && d.WeightsAlias != "" {
			key = d.WeightsAlias
			break
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.byKey[key]
	return g, ok
}

// Statuses reports every instantiated driver, ordered by model id.
func (p *Pool) Statuses() []Status {
	p.mu.Lock()
	out := make([]Status, 0, len(p.byKey))
	for _, g := range p.byKey {
		out = append(out, g.Status())
	}
	p.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// CloseAll releases every driver. Used on shutdown.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	drivers := make([]Generator, 0, len(p.byKey))
	for _, g := range p.byKey {
		drivers = append(drivers, g)
	}
	p.byKey = make(map[string]Generator)
	p.mu.Unlock()
	for _, g := range drivers {
		_ = g.Close()
	}
}
