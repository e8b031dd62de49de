//go:build !llama

package driver

// This file provides a no-CGO stub for the llama runtime. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real runtime lives in runtime_llama.go (tagged 'llama'). The stub fails
// fast rather than mocking inference in production binaries.

import (
	"context"

	"assistd/pkg/types"
)

// llamaBuilt indicates whether this binary carries real llama support.
var llamaBuilt = false

type llamaRuntime struct {
	// No real resources in the stub.
}

func newLlamaRuntime(modelPath string, ctxSize, threads int, accelerate bool) (*llamaRuntime, error) {
	return nil, ErrLoadFailed("llama support not built (missing 'llama' build tag)")
}

func (r *llamaRuntime) predict(ctx context.Context, promptText string, cfg types.DecodingConfig) (string, int, error) {
	// Unreachable in practice since newLlamaRuntime always errors.
	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
	}
	return "", 0, ErrGenerationFailed("llama support not built (missing 'llama' build tag)")
}

func (r *llamaRuntime) free() {}
