package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assistd/internal/catalog"
	"assistd/internal/orchestrator"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

// mockService scripts the orchestrator surface for handler tests.
type mockService struct {
	answer      func(req types.AnswerRequest) (*types.Answer, error)
	ready       bool
	cleared     bool
	metricsGone bool
}

func (m *mockService) Answer(ctx context.Context, req types.AnswerRequest) (*types.Answer, error) {
	if m.answer != nil {
		return m.answer(req)
	}
	return &types.Answer{Text: "ok", Source: "gemma3n-e4b", Driver: "gemma3n-e4b", Class: "standard"}, nil
}

func (m *mockService) ListModels() types.ModelsResponse {
	return types.ModelsResponse{Models: []types.ModelInfo{{ID: "gemma3n-e4b", Loaded: true, State: "ready"}}}
}

func (m *mockService) SelectModel(req types.SelectRequest) (*types.SelectResponse, error) {
	if req.ForceID == "absent" {
		return nil, catalog.ErrModelNotFound("absent")
	}
	return &types.SelectResponse{Identifier: "gemma3n-e4b", Chain: []string{"gemma3n-e4b"}}, nil
}

func (m *mockService) LoadModel(ctx context.Context, id string) (*types.LoadResponse, error) {
	if id == "absent" {
		return nil, catalog.ErrModelNotFound(id)
	}
	return &types.LoadResponse{Loaded: true}, nil
}

func (m *mockService) TestModel(ctx context.Context, id string) (*types.Answer, error) {
	return &types.Answer{Text: "ola", Source: id, Driver: id}, nil
}

func (m *mockService) MetricsReport() types.MetricsResponse {
	return types.MetricsResponse{FallbackUses: 3}
}

func (m *mockService) ResetMetrics() { m.metricsGone = true }

func (m *mockService) CacheStats() types.CacheStats { return types.CacheStats{Hits: 7} }

func (m *mockService) ClearCache() { m.cleared = true }

func (m *mockService) Ready() bool { return m.ready }

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnswerEndpoint(t *testing.T) {
	h := NewMux(&mockService{ready: true})
	rec := doJSON(t, h, http.MethodPost, "/answer", `{"prompt":"O que é malária?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var ans types.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ans.Source != "gemma3n-e4b" || ans.Driver != "gemma3n-e4b" {
		t.Fatalf("unexpected answer: %+v", ans)
	}
}

func TestAnswerRequiresJSONContentType(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/answer", strings.NewReader("prompt=x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestAnswerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", orchestrator.ErrInvalidInput("prompt is empty"), http.StatusBadRequest},
		{"media too large", prompt.ErrMediaTooLarge("image too big"), http.StatusRequestEntityTooLarge},
		{"resource insufficient", catalog.ErrResourceInsufficient("no fit"), http.StatusInsufficientStorage},
		{"no viable model", catalog.ErrNoViableModel("empty catalog"), http.StatusServiceUnavailable},
		{"model not found", catalog.ErrModelNotFound("nope"), http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := &mockService{answer: func(types.AnswerRequest) (*types.Answer, error) { return nil, c.err }}
			rec := doJSON(t, NewMux(svc), http.MethodPost, "/answer", `{"prompt":"x"}`)
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d", rec.Code, c.want)
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
				t.Fatalf("decode error payload: %v", err)
			}
			if er.Code != c.want || er.Error == "" {
				t.Fatalf("malformed error payload: %+v", er)
			}
		})
	}
}

func TestAnswerRejectsBadJSON(t *testing.T) {
	rec := doJSON(t, NewMux(&mockService{}), http.MethodPost, "/answer", `{"prompt":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestModelsEndpoints(t *testing.T) {
	h := NewMux(&mockService{})

	rec := doJSON(t, h, http.MethodGet, "/models", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "gemma3n-e4b") {
		t.Fatalf("GET /models: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/models/select", `{"domain":"medical"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /models/select: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/models/select", `{"force_id":"absent"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("forced absent model: %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/models/gemma3n-e4b/load", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"loaded":true`) {
		t.Fatalf("POST load: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/models/absent/load", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("load absent: %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/models/gemma3n-e4b/test", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ola") {
		t.Fatalf("POST test: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsAndCacheEndpoints(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodGet, "/metrics/summary", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"fallback_uses":3`) {
		t.Fatalf("metrics summary: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/metrics/reset", "")
	if rec.Code != http.StatusOK || !svc.metricsGone {
		t.Fatalf("metrics reset: %d reset=%v", rec.Code, svc.metricsGone)
	}

	rec = doJSON(t, h, http.MethodGet, "/cache/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"hits":7`) {
		t.Fatalf("cache stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/cache/clear", "")
	if rec.Code != http.StatusOK || !svc.cleared {
		t.Fatalf("cache clear: %d cleared=%v", rec.Code, svc.cleared)
	}

	rec = doJSON(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("prometheus metrics: %d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &mockService{ready: false}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz while warming: %d, want 503", rec.Code)
	}

	svc.ready = true
	rec = doJSON(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz when ready: %d", rec.Code)
	}
}
