package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"assistd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Answer(ctx context.Context, req types.AnswerRequest) (*types.Answer, error)
	ListModels() types.ModelsResponse
	SelectModel(req types.SelectRequest) (*types.SelectResponse, error)
	LoadModel(ctx context.Context, id string) (*types.LoadResponse, error)
	TestModel(ctx context.Context, id string) (*types.Answer, error)
	MetricsReport() types.MetricsResponse
	ResetMetrics()
	CacheStats() types.CacheStats
	ClearCache()
	Ready() bool
}

// Body limits: management endpoints take small JSON documents; /answer may
// carry inline media.
const (
	maxBodyBytes       int64 = 1 << 20
	maxAnswerBodyBytes int64 = 8 << 20
)

// zlog is an optional structured logger. If unset, the HTTP layer is silent;
// the metrics middleware still records everything.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// NewMux builds the full management router over svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/answer", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxAnswerBodyBytes)
		var req types.AnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		start := time.Now()
		ans, err := svc.Answer(r.Context(), req)
		if err != nil {
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logAnswer(r, status, time.Since(start), "")
			return
		}
		answerOutcomes.WithLabelValues(ans.Source).Inc()
		writeJSON(w, ans)
		logAnswer(r, http.StatusOK, time.Since(start), ans.Source)
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.ListModels())
	})

	r.Post("/models/select", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		resp, err := svc.SelectModel(req)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, resp)
	})

	r.Post("/models/{id}/load", func(w http.ResponseWriter, r *http.Request) {
		resp, err := svc.LoadModel(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, resp)
	})

	r.Post("/models/{id}/test", func(w http.ResponseWriter, r *http.Request) {
		ans, err := svc.TestModel(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, ans)
	})

	r.Get("/metrics/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.MetricsReport())
	})

	r.Post("/metrics/reset", func(w http.ResponseWriter, r *http.Request) {
		svc.ResetMetrics()
		writeJSON(w, map[string]string{"status": "reset"})
	})

	r.Get("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.CacheStats())
	})

	r.Post("/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		svc.ClearCache()
		writeJSON(w, map[string]string{"status": "cleared"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

func logAnswer(r *http.Request, status int, dur time.Duration, source string) {
	if zlog == nil {
		return
	}
	z := zlog.Info().Int("status", status).Dur("dur", dur).Str("path", r.URL.Path)
	if source != "" {
		z = z.Str("source", source)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("answer")
}
