//go:build llama

package driver

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"assistd/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaRuntime owns one set of loaded weights. It is not safe for concurrent
// predict calls; callers serialize access.
type llamaRuntime struct {
	model   *llama.LLama
	threads int
}

func newLlamaRuntime(modelPath string, ctxSize, threads int, accelerate bool) (*llamaRuntime, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(ctxSize),
	}
	if accelerate {
		mo = append(mo, llama.SetGPULayers(32))
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaRuntime{model: m, threads: threads}, nil
}

func (r *llamaRuntime) predict(ctx context.Context, promptText string, cfg types.DecodingConfig) (string, int, error) {
	if r.model == nil {
		return "", 0, errors.New("llama model not initialized")
	}
	tokens := 0
	r.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		tokens++
		return true
	})
	po := mapDecodingToPredictOptions(cfg, r.threads)
	text, err := r.model.Predict(promptText, po...)
	if err != nil {
		if ctx.Err() != nil {
			return "", tokens, ctx.Err()
		}
		return "", tokens, err
	}
	return text, tokens, nil
}

func (r *llamaRuntime) free() {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
}

func posInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func posF32(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// mapDecodingToPredictOptions converts decoding knobs into go-llama.cpp
// options. The no-repeat n-gram knob has no equivalent and is ignored.
func mapDecodingToPredictOptions(cfg types.DecodingConfig, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(posInt(cfg.MaxNewTokens, 64)),
		llama.SetThreads(posInt(threads, 1)),
		llama.SetTopP(posF32(float32(cfg.TopP), llama.DefaultOptions.TopP)),
		llama.SetTopK(posInt(cfg.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(posF32(float32(cfg.Temperature), llama.DefaultOptions.Temperature)),
		llama.SetPenalty(posF32(float32(cfg.RepetitionPenalty), llama.DefaultOptions.Penalty)),
	}
	if cfg.EarlyStop {
		po = append(po, llama.SetStopWords("\nUser:"))
	}
	return po
}
