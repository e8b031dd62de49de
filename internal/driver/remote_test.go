package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"assistd/internal/catalog"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

func remoteFixture(t *testing.T, handler http.Handler) *remoteDriver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	desc := catalog.Descriptor{ID: "gemma3n-lite", RemoteName: "gemma3n:e2b", LoadHint: "remote"}
	return newRemoteDriver(desc, Options{RemoteHost: srv.URL, RemoteKeepAlive: "10m"})
}

func chatBundle(text string) prompt.Bundle {
	return prompt.Bundle{
		Style: prompt.StyleChat,
		Messages: []prompt.Message{
			{Role: "system", Parts: []prompt.Part{{Kind: prompt.PartText, Text: "Seja util."}}},
			{Role: "user", Parts: []prompt.Part{{Kind: prompt.PartText, Text: text}}},
		},
	}
}

func TestRemoteLoadAndGenerate(t *testing.T) {
	var got remoteChatRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":    map[string]string{"role": "assistant", "content": "A malaria e transmitida por mosquitos."},
			"eval_count": 12,
		})
	})
	d := remoteFixture(t, mux)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st := d.Status(); st.State != StateReady {
		t.Fatalf("state after load = %s, want ready", st.State)
	}

	cfg := types.DecodingConfig{MaxNewTokens: 108, Temperature: 0.3, TopP: 0.85, TopK: 40, RepetitionPenalty: 1.1}
	res, err := d.Generate(context.Background(), chatBundle("O que e malaria?"), cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "A malaria e transmitida por mosquitos." {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.TokenCount != 12 {
		t.Fatalf("token count = %d, want 12", res.TokenCount)
	}

	// Wire contract checks.
	if got.Model != "gemma3n:e2b" {
		t.Fatalf("model = %q, want gemma3n:e2b", got.Model)
	}
	if got.Stream {
		t.Fatalf("stream must be false")
	}
	if got.KeepAlive != "10m" {
		t.Fatalf("keep_alive = %q, want 10m", got.KeepAlive)
	}
	if got.Options.NumPredict != 108 || got.Options.Temperature != 0.3 ||
		got.Options.TopP != 0.85 || got.Options.TopK != 40 || got.Options.RepeatPenalty != 1.1 {
		t.Fatalf("options not mapped: %+v", got.Options)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages not mapped: %+v", got.Messages)
	}
}

func TestRemoteGenerateServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusInternalServerError)
	})
	d := remoteFixture(t, mux)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := d.Generate(context.Background(), chatBundle("ola"), types.DecodingConfig{MaxNewTokens: 8})
	if !IsGenerationFailed(err) {
		t.Fatalf("expected generation-failed on 500, got %v", err)
	}
}

func TestRemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	desc := catalog.Descriptor{ID: "gemma3n-lite", RemoteName: "gemma3n:e2b"}
	d := newRemoteDriver(desc, Options{RemoteHost: url})
	err := d.Load(context.Background())
	if !IsRemoteUnavailable(err) {
		t.Fatalf("expected remote-unavailable, got %v", err)
	}
	if st := d.Status(); st.State != StateFailed {
		t.Fatalf("state = %s, want failed", st.State)
	}
}

func TestRemoteDegradesThenReloadRecovers(t *testing.T) {
	healthy := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "ok"},
		})
	})
	d := remoteFixture(t, mux)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < DefaultDegradeThreshold; i++ {
		if _, err := d.Generate(context.Background(), chatBundle("ola"), types.DecodingConfig{MaxNewTokens: 8}); err == nil {
			t.Fatalf("expected failure %d", i+1)
		}
	}
	if st := d.Status(); st.State != StateDegraded {
		t.Fatalf("state = %s, want degraded after %d failures", st.State, DefaultDegradeThreshold)
	}

	healthy = true
	if err := d.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st := d.Status()
	if st.State != StateReady || st.ConsecutiveFailures != 0 {
		t.Fatalf("after reload: %+v, want ready with zero failures", st)
	}
	if _, err := d.Generate(context.Background(), chatBundle("ola"), types.DecodingConfig{MaxNewTokens: 8}); err != nil {
		t.Fatalf("Generate after recovery: %v", err)
	}
}

func TestRemoteEmptyContentIsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "   "}})
	})
	d := remoteFixture(t, mux)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := d.Generate(context.Background(), chatBundle("ola"), types.DecodingConfig{MaxNewTokens: 8})
	if !IsGenerationFailed(err) {
		t.Fatalf("expected generation-failed on empty content, got %v", err)
	}
}
