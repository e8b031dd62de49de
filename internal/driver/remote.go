package driver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assistd/internal/catalog"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

const defaultRemoteTimeout = 120 * time.Second

// remoteDriver talks to an external inference server over its chat API.
// Generate calls may run concurrently; the remote serializes as it sees fit.
type remoteDriver struct {
	desc  catalog.Descriptor
	opts  Options
	track *tracker

	host      string
	keepAlive string
	client    *http.Client
}

func newRemoteDriver(desc catalog.Descriptor, opts Options) *remoteDriver {
	timeout := opts.RemoteTimeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	host := strings.TrimRight(opts.RemoteHost, "/")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	return &remoteDriver{
		desc:      desc,
		opts:      opts,
		track:     newTracker(opts.degradeThreshold()),
		host:      host,
		keepAlive: opts.RemoteKeepAlive,
		client:    &http.Client{Timeout: timeout},
	}
}

func (d *remoteDriver) Descriptor() catalog.Descriptor { return d.desc }

func (d *remoteDriver) TemplateStyle() prompt.Style { return prompt.StyleChat }

func (d *remoteDriver) Status() Status {
	state, lastErr, fails := d.track.snapshot()
	return Status{
		ModelID:             d.desc.ID,
		Backend:             "remote",
		State:               state,
		LastError:           lastErr,
		ConsecutiveFailures: fails,
	}
}

// Load verifies the remote is reachable. The remote loads weights on first
// use, so reachability is the whole readiness check.
func (d *remoteDriver) Load(ctx context.Context) error {
	if d.track.usable() {
		return nil
	}
	d.track.setLoading()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.host+"/api/tags", nil)
	if err != nil {
		wrapped := ErrLoadFailed(fmt.Sprintf("load %s: %v", d.desc.ID, err))
		d.track.setFailed(wrapped)
		return wrapped
	}
	resp, err := d.client.Do(req)
	if err != nil {
		wrapped := ErrRemoteUnavailable(fmt.Sprintf("remote %s unreachable: %v", d.host, err))
		d.track.setFailed(wrapped)
		return wrapped
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		wrapped := ErrRemoteUnavailable(fmt.Sprintf("remote %s returned %d", d.host, resp.StatusCode))
		d.track.setFailed(wrapped)
		return wrapped
	}
	d.track.setReady()
	return nil
}

// Wire types for the remote chat endpoint.
type remoteChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type remoteChatOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	NumPredict    int     `json:"num_predict"`
}

type remoteChatRequest struct {
	Model     string              `json:"model"`
	Messages  []remoteChatMessage `json:"messages"`
	Stream    bool                `json:"stream"`
	Options   remoteChatOptions   `json:"options"`
	KeepAlive string              `json:"keep_alive,omitempty"`
}

type remoteChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	EvalCount int `json:"eval_count"`
}

func (d *remoteDriver) Generate(ctx context.Context, bundle prompt.Bundle, cfg types.DecodingConfig) (Result, error) {
	if !d.track.usable() {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("driver %s not loaded", d.desc.ID))
	}
	model := d.desc.RemoteName
	if model == "" {
		model = d.desc.ID
	}
	payload := remoteChatRequest{
		Model:    model,
		Messages: chatMessages(bundle),
		Stream:   false,
		Options: remoteChatOptions{
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			TopK:          cfg.TopK,
			RepeatPenalty: cfg.RepetitionPenalty,
			NumPredict:    cfg.MaxNewTokens,
		},
		KeepAlive: d.keepAlive,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("generate %s: encode request: %v", d.desc.ID, err))
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Result{}, ErrGenerationFailed(fmt.Sprintf("generate %s: %v", d.desc.ID, err))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		wrapped := ErrRemoteUnavailable(fmt.Sprintf("remote %s unreachable: %v", d.host, err))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		wrapped := ErrRemoteUnavailable(fmt.Sprintf("remote %s: read response: %v", d.host, err))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	if resp.StatusCode != http.StatusOK {
		wrapped := ErrGenerationFailed(fmt.Sprintf(
			"generate %s: remote returned %d: %s", d.desc.ID, resp.StatusCode, strings.TrimSpace(string(raw))))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	var out remoteChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		wrapped := ErrGenerationFailed(fmt.Sprintf("generate %s: decode response: %v", d.desc.ID, err))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		wrapped := ErrGenerationFailed(fmt.Sprintf("generate %s: remote returned empty content", d.desc.ID))
		d.track.recordFailure(wrapped)
		return Result{}, wrapped
	}
	d.track.recordSuccess()
	return Result{Text: text, TokenCount: out.EvalCount, Elapsed: time.Since(start)}, nil
}

func (d *remoteDriver) Reload(ctx context.Context) error {
	d.track.setUnloaded()
	return d.Load(ctx)
}

func (d *remoteDriver) Close() error {
	d.client.CloseIdleConnections()
	d.track.setUnloaded()
	return nil
}

// chatMessages converts a bundle into wire messages. Inline image bytes go
// out base64-encoded; path-only refs and audio have no wire slot and are
// dropped here, the text already describes them.
func chatMessages(bundle prompt.Bundle) []remoteChatMessage {
	if bundle.Style == prompt.StylePlain {
		return []remoteChatMessage{{Role: "user", Content: bundle.Text}}
	}
	msgs := make([]remoteChatMessage, 0, len(bundle.Messages))
	for _, m := range bundle.Messages {
		var texts []string
		var images []string
		for _, part := range m.Parts {
			switch part.Kind {
			case prompt.PartText:
				texts = append(texts, part.Text)
			case prompt.PartImage:
				if part.Media != nil && len(part.Media.Data) > 0 {
					images = append(images, base64.StdEncoding.EncodeToString(part.Media.Data))
				}
			}
		}
		msgs = append(msgs, remoteChatMessage{
			Role:    m.Role,
			Content: strings.Join(texts, "\n"),
			Images:  images,
		})
	}
	return msgs
}
