package orchestrator

import (
	"context"
	"fmt"

	"assistd/internal/catalog"
	"assistd/internal/classify"
	"assistd/internal/deadline"
	"assistd/internal/driver"
	"assistd/pkg/types"
)

// ListModels reports every catalog entry with its live driver state.
func (o *Orchestrator) ListModels() types.ModelsResponse {
	descs := o.sel.List()
	out := types.ModelsResponse{Models: make([]types.ModelInfo, 0, len(descs))}
	for _, d := range descs {
		info := types.ModelInfo{
			ID:               d.ID,
			Name:             d.Name,
			Family:           d.Family,
			Quant:            string(d.Quant),
			RAMRequirementMB: d.RAMRequirementMB,
			Capabilities:     capStrings(d.Capabilities),
			Affinities:       d.Affinities,
		}
		if g, ok := o.drivers.Loaded(d.ID, descs); ok {
			st := g.Status()
			info.State = string(st.State)
			info.Loaded = st.State == driver.StateReady || st.State == driver.StateDegraded
		}
		out.Models = append(out.Models, info)
	}
	return out
}

// SelectModel runs selection without executing anything, reporting the chain
// and the decoding configuration a query of the given complexity would get.
func (o *Orchestrator) SelectModel(req types.SelectRequest) (*types.SelectResponse, error) {
	snap, err := o.probe()
	if err != nil {
		return nil, fmt.Errorf("resource probe: %w", err)
	}
	chain, err := o.sel.Select(snap, catalog.Request{
		Domain:         req.Domain,
		Complexity:     req.Complexity,
		PreferAccuracy: req.PreferAccuracy,
		ForceID:        req.ForceID,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(chain))
	for i, d := range chain {
		ids[i] = d.ID
	}
	cls := classFor(req.Complexity)
	_, cfg := classify.Classify(sampleQuery(cls))
	return &types.SelectResponse{Identifier: chain[0].ID, Chain: ids, Config: cfg}, nil
}

// LoadModel loads (or reloads) the driver for one model id.
func (o *Orchestrator) LoadModel(ctx context.Context, id string) (*types.LoadResponse, error) {
	desc, ok := o.sel.ByID(id)
	if !ok {
		return nil, catalog.ErrModelNotFound(id)
	}
	g := o.drivers.For(desc)
	var err error
	if st := g.Status(); st.State == driver.StateDegraded || st.State == driver.StateFailed {
		err = g.Reload(ctx)
	} else {
		err = g.Load(ctx)
	}
	if err != nil {
		return &types.LoadResponse{Loaded: false, Error: err.Error()}, nil
	}
	return &types.LoadResponse{Loaded: true}, nil
}

// TestModel runs one short generation against a specific model to verify it
// end to end. Results bypass the cache.
func (o *Orchestrator) TestModel(ctx context.Context, id string) (*types.Answer, error) {
	desc, ok := o.sel.ByID(id)
	if !ok {
		return nil, catalog.ErrModelNotFound(id)
	}
	g := o.drivers.For(desc)
	if st := g.Status(); st.State != driver.StateReady && st.State != driver.StateDegraded {
		if err := g.Load(ctx); err != nil {
			return nil, err
		}
	}
	const probeQuery = "Responda apenas: ola"
	bundle, err := o.assembler.Assemble(probeQuery, catalog.DomainGeneral, g.TemplateStyle(), nil)
	if err != nil {
		return nil, err
	}
	cfg := types.DecodingConfig{
		MaxNewTokens:        16,
		Temperature:         0.1,
		TopP:                0.85,
		TopK:                40,
		RepetitionPenalty:   1.1,
		MaxWallClockSeconds: 15,
	}
	outcome := deadline.Run(ctx, cfg.WallClock()+deadlineMargin, func() (driver.Result, error) {
		return g.Generate(ctx, bundle, cfg)
	})
	o.metrics.RecordDriver(desc.ID, outcome.Status, outcome.Value.Elapsed)
	if outcome.Status != deadline.Completed {
		if outcome.Err != nil {
			return nil, outcome.Err
		}
		return nil, driver.ErrGenerationFailed(fmt.Sprintf("test generation on %s %s", id, outcome.Status))
	}
	return &types.Answer{
		Text:       outcome.Value.Text,
		Source:     desc.ID,
		Driver:     desc.ID,
		ElapsedMS:  outcome.Value.Elapsed.Milliseconds(),
		TokenCount: outcome.Value.TokenCount,
	}, nil
}

// MetricsReport returns the JSON metrics summary.
func (o *Orchestrator) MetricsReport() types.MetricsResponse {
	return o.metrics.Report(o.cache.Stats())
}

// ResetMetrics drops all recorded series.
func (o *Orchestrator) ResetMetrics() { o.metrics.Reset() }

// CacheStats reports response-cache counters.
func (o *Orchestrator) CacheStats() types.CacheStats { return o.cache.Stats() }

// ClearCache empties the response cache, memory and disk.
func (o *Orchestrator) ClearCache() { o.cache.Clear() }

// DriverStatuses reports every instantiated driver.
func (o *Orchestrator) DriverStatuses() []driver.Status { return o.drivers.Statuses() }

func capStrings(caps []catalog.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}

func classFor(complexity string) classify.Class {
	switch complexity {
	case "low":
		return classify.ClassFactual
	case "high":
		return classify.ClassComplex
	default:
		return classify.ClassStandard
	}
}

// sampleQuery yields a representative query per class so SelectModel can
// report the decoding defaults that class would receive.
func sampleQuery(cls classify.Class) string {
	switch cls {
	case classify.ClassFactual:
		return "O que significa?"
	case classify.ClassComplex:
		return "Analise as vantagens desta abordagem em detalhe para a comunidade local"
	default:
		return "Explique brevemente este assunto para um estudante da comunidade"
	}
}
