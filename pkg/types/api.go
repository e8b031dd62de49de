package types

// AnswerRequest is the payload of the answer operation. Transport bindings
// (HTTP, CLI) decode into this struct and hand it to the orchestrator.
type AnswerRequest struct {
	// Required user prompt text.
	Prompt string `json:"prompt"`
	// Language tag, e.g. "pt" or "pt-BR". Defaults to "pt-BR".
	Language string `json:"language,omitempty"`
	// Subject domain, e.g. "medical", "agriculture". Empty means inferred.
	Domain string `json:"domain,omitempty"`
	// Force a specific catalog model id instead of automatic selection.
	ForceModel string `json:"force_model,omitempty"`
	// Prefer the largest fitting model over the fastest one.
	PreferAccuracy bool `json:"prefer_accuracy,omitempty"`
	// Optional per-request decoding overrides.
	Overrides *DecodingOverrides `json:"overrides,omitempty"`
	// Optional multimodal attachments.
	Media *Media `json:"media,omitempty"`
}

// DecodingOverrides replaces individual fields of the classifier-derived
// decoding configuration. Nil fields are left untouched.
type DecodingOverrides struct {
	MaxNewTokens        *int     `json:"max_new_tokens,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	TopP                *float64 `json:"top_p,omitempty"`
	TopK                *int     `json:"top_k,omitempty"`
	RepetitionPenalty   *float64 `json:"repetition_penalty,omitempty"`
	MaxWallClockSeconds *float64 `json:"max_wall_clock_seconds,omitempty"`
}

// Media carries opaque multimodal attachments. The orchestrator validates
// size limits but never decodes the payloads.
type Media struct {
	Image *MediaRef `json:"image,omitempty"`
	Audio *MediaRef `json:"audio,omitempty"`
}

// MediaRef is either an on-disk path or inline bytes, with size hints used
// for validation before any driver is invoked.
type MediaRef struct {
	Path string `json:"path,omitempty"`
	Data []byte `json:"data,omitempty"`
	// Image hints in pixels. Zero means unknown and passes validation.
	WidthPx  int `json:"width_px,omitempty"`
	HeightPx int `json:"height_px,omitempty"`
	// Audio hint in seconds. Zero means unknown and passes validation.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Answer is the output envelope of the answer operation.
type Answer struct {
	// Generated (or fallback) response text.
	Text string `json:"text"`
	// Origin of the text: the producing driver id, "cache" or "fallback".
	Source string `json:"source"`
	// Identifier of the driver that produced the text; empty for fallback.
	Driver string `json:"driver,omitempty"`
	// Query class assigned by the classifier: factual|standard|complex|creative.
	Class string `json:"class"`
	// Wall-clock time spent answering, in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`
	// True when the text was served from the response cache.
	CacheHit bool `json:"cache_hit"`
	// Approximate number of generated tokens; zero when unknown.
	TokenCount int `json:"token_count,omitempty"`
	// Correlation id assigned by the orchestrator.
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
