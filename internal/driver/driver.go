package driver

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"assistd/internal/catalog"
	"assistd/internal/common/fsutil"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

// State of a driver's lifecycle.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateFailed   State = "failed"
	StateDegraded State = "degraded"
)

// DefaultDegradeThreshold is the number of consecutive generation failures
// after which a ready driver reports degraded.
const DefaultDegradeThreshold = 3

// Result is the outcome of one successful generation.
type Result struct {
	Text       string
	TokenCount int
	Elapsed    time.Duration
}

// Status is a point-in-time snapshot of a driver, safe to serve concurrently.
type Status struct {
	ModelID             string
	Backend             string
	State               State
	LastError           string
	ConsecutiveFailures int
}

// Generator is one loaded backend serving a single catalog entry. Load and
// Reload are idempotent; Generate must only be called via the orchestrator,
// which enforces deadlines around it.
type Generator interface {
	// Descriptor returns the catalog entry this driver serves.
	Descriptor() catalog.Descriptor
	// TemplateStyle tells the assembler how to render prompts for this backend.
	TemplateStyle() prompt.Style
	// Load acquires the model weights. Calling Load on a ready driver is a no-op.
	Load(ctx context.Context) error
	// Generate runs one completion over the bundle with the given decoding knobs.
	Generate(ctx context.Context, bundle prompt.Bundle, cfg types.DecodingConfig) (Result, error)
	// Status reports the current lifecycle snapshot.
	Status() Status
	// Reload releases and re-acquires weights, clearing failure state.
	Reload(ctx context.Context) error
	// Close releases weights and marks the driver unloaded.
	Close() error
}

// Options configures driver construction. Zero values pick defaults.
type Options struct {
	ModelsDir        string
	LoadPolicy       string // "cpu" or "accelerator"
	CtxSize          int
	Threads          int
	RemoteHost       string
	RemoteKeepAlive  string
	RemoteTimeout    time.Duration
	DegradeThreshold int
}

func (o Options) degradeThreshold() int {
	if o.DegradeThreshold > 0 {
		return o.DegradeThreshold
	}
	return DefaultDegradeThreshold
}

func (o Options) modelPath(desc catalog.Descriptor) string {
	if desc.ModelPath == "" {
		return ""
	}
	if filepath.IsAbs(desc.ModelPath) {
		return desc.ModelPath
	}
	dir, err := fsutil.ExpandHome(o.ModelsDir)
	if err != nil {
		dir = o.ModelsDir
	}
	return filepath.Join(dir, desc.ModelPath)
}

// tracker holds the lifecycle state machine shared by all backends. A ready
// driver degrades after threshold consecutive generation failures; any
// success resets the counter.
type tracker struct {
	mu          sync.Mutex
	state       State
	lastErr     string
	consecFails int
	threshold   int
}

func newTracker(threshold int) *tracker {
	return &tracker{state: StateUnloaded, threshold: threshold}
}

func (t *tracker) snapshot() (State, string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.lastErr, t.consecFails
}

func (t *tracker) setLoading() {
	t.mu.Lock()
	t.state = StateLoading
	t.mu.Unlock()
}

func (t *tracker) setReady() {
	t.mu.Lock()
	t.state = StateReady
	t.lastErr = ""
	t.consecFails = 0
	t.mu.Unlock()
}

func (t *tracker) setFailed(err error) {
	t.mu.Lock()
	t.state = StateFailed
	t.lastErr = err.Error()
	t.mu.Unlock()
}

func (t *tracker) setUnloaded() {
	t.mu.Lock()
	t.state = StateUnloaded
	t.lastErr = ""
	t.consecFails = 0
	t.mu.Unlock()
}

func (t *tracker) recordSuccess() {
	t.mu.Lock()
	t.consecFails = 0
	if t.state == StateDegraded {
		t.state = StateReady
	}
	t.mu.Unlock()
}

func (t *tracker) recordFailure(err error) {
	t.mu.Lock()
	t.consecFails++
	t.lastErr = err.Error()
	if t.state == StateReady && t.consecFails >= t.threshold {
		t.state = StateDegraded
	}
	t.mu.Unlock()
}

// usable reports whether Generate may proceed (loaded, not failed).
func (t *tracker) usable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateReady || t.state == StateDegraded
}

// New builds a driver for the descriptor. Mode overrides the descriptor's
// load hint when non-empty; unknown modes fall back to the native backend.
func New(mode string, desc catalog.Descriptor, opts Options) Generator {
	if mode == "" {
		mode = desc.LoadHint
	}
	switch mode {
	case "pipeline":
		return newPipelineDriver(desc, opts)
	case "hybrid":
		return newHybridDriver(desc, opts)
	case "remote":
		return newRemoteDriver(desc, opts)
	default:
		return newNativeDriver(desc, opts)
	}
}
