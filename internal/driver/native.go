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

// nativeDriver runs inference in-process over directly loaded weights. It
// honors the full decoding knob set and serializes generate calls because the
// underlying runtime is single-threaded per model.
type nativeDriver struct {
	desc  catalog.Descriptor
	opts  Options
	track *tracker

	genMu sync.Mutex
	rt    *llamaRuntime
}

func newNativeDriver(desc catalog.Descriptor, opts Options) *nativeDriver {
	return &nativeDriver{desc: desc, opts: opts, track: newTracker(opts.degradeThreshold())}
}

func (d *nativeDriver) Descriptor() catalog.Descriptor { return d.desc }

func (d *nativeDriver) TemplateStyle() prompt.Style { return prompt.StylePlain }

func (d *nativeDriver) Status() Status {
	state, lastErr, fails := d.track.snapshot()
	return Status{
		ModelID:             d.desc.ID,
		Backend:             "native",
		State:               state,
		LastError:           lastErr,
		ConsecutiveFailures: fails,
	}
}

func (d *nativeDriver) Load(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil && d.track.usable() {
		return nil
	}
	return d.loadLocked(ctx)
}

// loadLocked acquires weights; callers hold genMu.
func (d *nativeDriver) loadLocked(ctx context.Context) error {
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
	d.track.setReady()
	return nil
}

func (d *nativeDriver) Generate(ctx context.Context, bundle prompt.Bundle, cfg types.DecodingConfig) (Result, error) {
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

func (d *nativeDriver) Reload(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return d.loadLocked(ctx)
}

func (d *nativeDriver) Close() error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return nil
}
