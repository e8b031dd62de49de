package types

// ModelInfo describes one catalog entry plus its live driver state.
type ModelInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Family           string   `json:"family,omitempty"`
	Quant            string   `json:"quant,omitempty"`
	RAMRequirementMB int      `json:"ram_requirement_mb"`
	Capabilities     []string `json:"capabilities"`
	Affinities       []string `json:"affinities,omitempty"`
	Loaded           bool     `json:"loaded"`
	State            string   `json:"state,omitempty"`
}

// ModelsResponse wraps the list returned by GET /models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// SelectRequest asks the selector for a model chain without running anything.
type SelectRequest struct {
	Domain         string `json:"domain,omitempty"`
	Complexity     string `json:"complexity,omitempty"`
	PreferAccuracy bool   `json:"prefer_accuracy,omitempty"`
	ForceID        string `json:"force_id,omitempty"`
}

// SelectResponse reports the selected primary model and its fallback chain.
type SelectResponse struct {
	Identifier string         `json:"identifier"`
	Chain      []string       `json:"chain"`
	Config     DecodingConfig `json:"config"`
}

// LoadResponse reports the outcome of an explicit model load.
type LoadResponse struct {
	Loaded bool   `json:"loaded"`
	Error  string `json:"error,omitempty"`
}

// EndpointStats summarizes request metrics for one logical endpoint.
type EndpointStats struct {
	Total     uint64  `json:"total_requests"`
	Succeeded uint64  `json:"successful_requests"`
	Failed    uint64  `json:"failed_requests"`
	AvgMS     float64 `json:"avg_ms"`
	P50MS     float64 `json:"p50_ms"`
	P95MS     float64 `json:"p95_ms"`
}

// DriverStats summarizes generation metrics for one driver.
type DriverStats struct {
	Generations  uint64  `json:"generations"`
	Failures     uint64  `json:"failures"`
	Timeouts     uint64  `json:"timeouts"`
	LoadFailures uint64  `json:"load_failures"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        float64 `json:"p50_ms"`
	P95MS        float64 `json:"p95_ms"`
}

// CacheStats reports response-cache effectiveness.
type CacheStats struct {
	Hits           uint64  `json:"hits"`
	Misses         uint64  `json:"misses"`
	MemoryHits     uint64  `json:"memory_hits"`
	DiskHits       uint64  `json:"disk_hits"`
	Saves          uint64  `json:"saves"`
	Evictions      uint64  `json:"evictions"`
	MemoryEntries  int     `json:"memory_entries"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

// MetricsResponse is the payload of the metrics() management operation.
type MetricsResponse struct {
	Endpoints     map[string]EndpointStats `json:"endpoints"`
	Drivers       map[string]DriverStats   `json:"drivers"`
	Cache         CacheStats               `json:"cache"`
	FallbackUses  uint64                   `json:"fallback_uses"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
}
