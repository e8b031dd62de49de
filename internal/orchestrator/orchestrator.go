package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"assistd/internal/catalog"
	"assistd/internal/classify"
	"assistd/internal/deadline"
	"assistd/internal/driver"
	"assistd/internal/fallback"
	"assistd/internal/prompt"
	"assistd/internal/respcache"
	"assistd/internal/sysinfo"
	"assistd/pkg/types"
)

// defaultLanguage is applied when a request leaves the language empty.
const defaultLanguage = "pt-BR"

// deadlineMargin is added on top of the decoding wall-clock budget so the
// executor does not race the driver's own accounting.
const deadlineMargin = 2 * time.Second

// DriverSource hands out drivers per descriptor. Satisfied by driver.Pool;
// tests substitute scripted fakes.
type DriverSource interface {
	For(desc catalog.Descriptor) driver.Generator
	Loaded(id string, descs []catalog.Descriptor) (driver.Generator, bool)
	Statuses() []driver.Status
	CloseAll()
}

// Options wires the orchestrator's collaborators. Selector, Cache, Assembler
// and Drivers are required; Probe defaults to sysinfo.Probe.
type Options struct {
	Selector  *catalog.Selector
	Cache     *respcache.Cache
	Assembler *prompt.Assembler
	Drivers   DriverSource
	Probe     func() (sysinfo.Snapshot, error)
}

// Orchestrator coordinates classification, selection, driver execution and
// fallback for the answer operation. Safe for concurrent use.
type Orchestrator struct {
	sel       *catalog.Selector
	cache     *respcache.Cache
	assembler *prompt.Assembler
	drivers   DriverSource
	probe     func() (sysinfo.Snapshot, error)
	metrics   *Metrics
	warming   atomic.Bool
}

// New builds an orchestrator over the given collaborators.
func New(opts Options) *Orchestrator {
	probe := opts.Probe
	if probe == nil {
		probe = sysinfo.Probe
	}
	return &Orchestrator{
		sel:       opts.Selector,
		cache:     opts.Cache,
		assembler: opts.Assembler,
		drivers:   opts.Drivers,
		probe:     probe,
		metrics:   NewMetrics(),
	}
}

// Metrics exposes the process metrics recorder.
func (o *Orchestrator) Metrics() *Metrics { return o.metrics }

// Ready reports whether the orchestrator can serve requests. It is false
// only while a startup preload is in flight; lazy-loading paths are always
// considered ready because fallback answers need no driver.
func (o *Orchestrator) Ready() bool { return !o.warming.Load() }

// Close releases every live driver.
func (o *Orchestrator) Close() { o.drivers.CloseAll() }

// Answer runs one query end to end: cache, classification, selection, the
// driver chain under deadlines, and the rule-based fallback at exhaustion.
func (o *Orchestrator) Answer(ctx context.Context, req types.AnswerRequest) (*types.Answer, error) {
	start := time.Now()
	answer, err := o.answer(ctx, start, req)
	o.metrics.RecordEndpoint("answer", err == nil, time.Since(start))
	return answer, err
}

func (o *Orchestrator) answer(ctx context.Context, start time.Time, req types.AnswerRequest) (*types.Answer, error) {
	promptText := strings.TrimSpace(req.Prompt)
	if promptText == "" {
		return nil, ErrInvalidInput("prompt is empty")
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	// The explicit domain always wins; inference only fills the gap when the
	// request leaves it empty.
	domain := req.Domain
	if domain == "" {
		domain = prompt.InferDomain(promptText)
	}
	requestID := uuid.NewString()

	// Validating media up front keeps oversize payloads from consuming any
	// of the generation budget. The plain bundle is reused below.
	plainBundle, err := o.assembler.Assemble(promptText, domain, prompt.StylePlain, req.Media)
	if err != nil {
		return nil, err
	}

	if text, ok := o.cache.Get(promptText, language, domain); ok {
		return &types.Answer{
			Text:      text,
			Source:    "cache",
			Class:     string(classifyOnly(promptText)),
			ElapsedMS: time.Since(start).Milliseconds(),
			CacheHit:  true,
			RequestID: requestID,
		}, nil
	}

	cls, cfg := classify.Classify(promptText)
	cfg = cfg.Apply(req.Overrides)

	snap, err := o.probe()
	if err != nil {
		return nil, fmt.Errorf("resource probe: %w", err)
	}
	chain, err := o.sel.Select(snap, catalog.Request{
		Domain:         domain,
		Complexity:     cls.Complexity(),
		PreferAccuracy: req.PreferAccuracy,
		ForceID:        req.ForceModel,
		NeedImage:      req.Media != nil && req.Media.Image != nil,
		NeedAudio:      req.Media != nil && req.Media.Audio != nil,
	})
	if err != nil {
		return nil, err
	}

	// Retries across the chain share one wall budget so a request cannot
	// stack full deadlines driver after driver.
	budget := 2 * cfg.WallClock()

	for _, desc := range chain {
		remaining := budget - time.Since(start)
		if remaining <= 0 {
			break
		}
		g := o.drivers.For(desc)
		st := g.Status()
		if st.State == driver.StateDegraded {
			continue
		}
		if st.State != driver.StateReady {
			if err := g.Load(ctx); err != nil {
				o.metrics.RecordLoadFailure(desc.ID)
				continue
			}
		}

		bundle := plainBundle
		if g.TemplateStyle() == prompt.StyleChat {
			bundle, err = o.assembler.Assemble(promptText, domain, prompt.StyleChat, req.Media)
			if err != nil {
				return nil, err
			}
		}

		callBudget := cfg.WallClock() + deadlineMargin
		if callBudget > remaining {
			callBudget = remaining
		}
		outcome := deadline.Run(ctx, callBudget, func() (driver.Result, error) {
			return g.Generate(ctx, bundle, cfg)
		})
		o.metrics.RecordDriver(desc.ID, outcome.Status, outcome.Value.Elapsed)
		if outcome.Status != deadline.Completed {
			continue
		}

		o.cache.Put(promptText, outcome.Value.Text, language, domain)
		return &types.Answer{
			Text:       outcome.Value.Text,
			Source:     desc.ID,
			Driver:     desc.ID,
			Class:      string(cls),
			ElapsedMS:  time.Since(start).Milliseconds(),
			TokenCount: outcome.Value.TokenCount,
			RequestID:  requestID,
		}, nil
	}

	// Chain exhausted. Fallback answers are never cached.
	o.metrics.RecordFallback()
	return &types.Answer{
		Text:      fallback.Generate(domain, promptText),
		Source:    "fallback",
		Class:     string(cls),
		ElapsedMS: time.Since(start).Milliseconds(),
		RequestID: requestID,
	}, nil
}

func classifyOnly(promptText string) classify.Class {
	cls, _ := classify.Classify(promptText)
	return cls
}
