package types

import "time"

// DecodingConfig holds the generation knobs for a single request. The
// classifier derives one per query class; request overrides may replace
// individual fields before it reaches a driver.
type DecodingConfig struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	NoRepeatNGram     int     `json:"no_repeat_ngram,omitempty"`
	EarlyStop         bool    `json:"early_stop"`
	// Wall-clock hint for the driver. The deadline executor's budget is
	// authoritative and always larger than this value.
	MaxWallClockSeconds float64 `json:"max_wall_clock_seconds"`
}

// WallClock returns the wall-clock hint as a duration.
func (c DecodingConfig) WallClock() time.Duration {
	return time.Duration(c.MaxWallClockSeconds * float64(time.Second))
}

// Apply returns a copy of c with non-nil override fields replaced.
func (c DecodingConfig) Apply(o *DecodingOverrides) DecodingConfig {
	if o == nil {
		return c
	}
	if o.MaxNewTokens != nil {
		c.MaxNewTokens = *o.MaxNewTokens
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		c.TopP = *o.TopP
	}
	if o.TopK != nil {
		c.TopK = *o.TopK
	}
	if o.RepetitionPenalty != nil {
		c.RepetitionPenalty = *o.RepetitionPenalty
	}
	if o.MaxWallClockSeconds != nil {
		c.MaxWallClockSeconds = *o.MaxWallClockSeconds
	}
	return c
}
