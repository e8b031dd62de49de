package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"assistd/internal/catalog"
	"assistd/internal/common/fsutil"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

// pipelineDriver is the one-call high-level path over the in-process runtime.
// It consumes chat-style bundles and maps only the coarse decoding knobs,
// leaving sampling details at runtime defaults.
type pipelineDriver struct {
	desc  catalog.Descriptor
	opts  Options
	track *tracker

	genMu sync.Mutex
	rt    *llamaRuntime
}

func newPipelineDriver(desc catalog.Descriptor, opts Options) *pipelineDriver {
	return &pipelineDriver{desc: desc, opts: opts, track: newTracker(opts.degradeThreshold())}
}

func (d *pipelineDriver) Descriptor() catalog.Descriptor { return d.desc }

func (d *pipelineDriver) TemplateStyle() prompt.Style { return prompt.StyleChat }

func (d *pipelineDriver) Status() Status {
	state, lastErr, fails := d.track.snapshot()
	return Status{
		ModelID:             d.desc.ID,
		Backend:             "pipeline",
		State:               state,
		LastError:           lastErr,
		ConsecutiveFailures: fails,
	}
}

func (d *pipelineDriver) Load(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil && d.track.usable() {
		return nil
	}
	return d.loadLocked(ctx)
}

func (d *pipelineDriver) loadLocked(ctx context.Context) error {
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

func (d *pipelineDriver) Generate(ctx context.Context, bundle prompt.Bundle, cfg types.DecodingConfig) (Result, error) {
	if !d.track.usable() {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("driver %s not loaded", d.desc.ID))
	}
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt == nil {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("driver %s lost its runtime", d.desc.ID))
	}
	// Only the coarse knobs survive the simplified mapping.
	simplified := types.DecodingConfig{
		MaxNewTokens: cfg.MaxNewTokens,
		Temperature:  cfg.Temperature,
	}
	start := time.Now()
	text, tokens, err := d.rt.predict(ctx, renderChat(bundle), simplified)
	if err != nil {
		wrapped := ErrGenerationFailed(fmt.Sprintf("generate %s: %v", d.desc.ID, err))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	d.track.recordSuccess()
	return Result{Text: text, TokenCount: tokens, Elapsed: time.Since(start)}, nil
}

func (d *pipelineDriver) Reload(ctx context.Context) error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return d.loadLocked(ctx)
}

func (d *pipelineDriver) Close() error {
	d.genMu.Lock()
	defer d.genMu.Unlock()
	if d.rt != nil {
		d.rt.free()
		d.rt = nil
	}
	d.track.setUnloaded()
	return nil
}

// renderChat flattens a chat bundle into a role-tagged transcript for
// backends that take a single string. Media parts contribute a placeholder
// line; decoding media is the runtime's job, not ours.
func renderChat(bundle prompt.Bundle) string {
	if bundle.Style == prompt.StylePlain {
		return bundle.Text
	}
	var b strings.Builder
	for _, msg := range bundle.Messages {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		for i, part := range msg.Parts {
			if i > 0 {
				b.WriteString("\n")
			}
			switch part.Kind {
			case prompt.PartText:
				b.WriteString(part.Text)
			case prompt.PartImage:
				b.WriteString("[image]")
			case prompt.PartAudio:
				b.WriteString("[audio]")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("assistant: ")
	return b.String()
}
