package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"assistd/internal/catalog"
	"assistd/internal/common/fsutil"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

// hybridCompileMu serializes warm-compile passes across all hybrid instances
// in the process. The compile step is not reentrant.
var hybridCompileMu sync.Mutex

// hybridDriver is the native path plus a guarded warm-compile pass at load.
// The warm pass primes runtime kernels with a short throwaway prediction;
// if it fails the driver still comes up ready, just without the priming.
type hybridDriver struct {
	desc  catalog.Descriptor
	opts  Options
	track *tracker

	genMu sync.Mutex
	rt    *llamaRuntime
}

func newHybridDriver(desc catalog.Descriptor, opts Options) *hybridDriver {
	return &hybridDriver{desc: desc, opts: opts, track: newTracker(opts.degradeThreshold())}
}

func (d *hybridDriver) Descriptor() catalog.Descriptor { return d.desc }

func (d *hybridDriver) TemplateStyle() prompt.Style { return prompt.StylePlain }

func (d *hybridDriver) Status() Status {
	state, lastErr, fails := d.track.snapshot()
	return Status{
		ModelID:             d.desc.ID,
		Backend:             "hybrid",
		State:               state,
		LastError:           lastErr,
		ConsecutiveFailures: fails,
	}
}

func (d *hybridDriver) Load(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil && d.track.usable() {
		return nil
	}
	return d.loadLocked(ctx)
}

func (d *hybridDriver) loadLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		d.track.setFailed(err)
		return ErrLoadFailed(fmt.Sprintf("load %s: %v", d.desc.ID, err))
	}
	d.track.setLoading()
	path := d.opts.modelPath(d.desc)
	if path == "" || !fsutil.PathExists(path) {
		err := ErrLoadFailed(fmt.Sprintf("load %s: model file %q not found", d.desc.ID, path))
		d.track.setFailed(err)
		return err
	}
	rt, err := newLlamaRuntime(path, d.opts.CtxSize, d.opts.Threads, d.opts.LoadPolicy == "accelerator")
	if err != nil {
		wrapped := ErrLoadFailed(fmt.Sprintf("load %s: %v", d.desc.ID, err))
		d.track.setFailed(wrapped)
		return wrapped
	}
	d.rt = rt
	d.warmCompile(ctx)
	d.track.setReady()
	return nil
}

// warmCompile runs one short guarded prediction so the first real request
// does not pay the kernel warm-up cost. Failures are swallowed.
func (d *hybridDriver) warmCompile(ctx context.Context) {
	hybridCompileMu.Lock()
	defer hybridCompileMu.Unlock()
	warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, _ = d.rt.predict(warmCtx, "Ola", types.DecodingConfig{
		MaxNewTokens: 4,
		Temperature:  0.1,
	})
}

func (d *hybridDriver) Generate(ctx context.Context, bundle prompt.Bundle, cfg types.DecodingConfig) (Result, error) {
	if !d.track.usable() {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("driver %s not loaded", d.desc.ID))
	}
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt == nil {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("driver %s lost its runtime", d.desc.ID))
	}
	start := time.Now()
	text, tokens, err := d.rt.predict(ctx, bundle.Text, cfg)
	if err != nil {
		wrapped := ErrGenerationFailed(fmt.Sprintf("generate %s: %v", d.desc.ID, err))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	d.track.recordSuccess()
	return Result{Text: text, TokenCount: tokens, Elapsed: time.Since(start)}, nil
}

func (d *hybridDriver) Reload(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return d.loadLocked(ctx)
}

func (d *hybridDriver) Close() error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return nil
}
