package classify

import (
	"strings"
	"unicode"

	"assistd/pkg/types"
)

// Class is the discriminant assigned to a query.
type Class string

const (
	ClassFactual  Class = "factual"
	ClassStandard Class = "standard"
	ClassComplex  Class = "complex"
	ClassCreative Class = "creative"
)

// Complexity maps a class to the selector's complexity scale.
func (c Class) Complexity() string {
	switch c {
	case ClassFactual:
		return "low"
	case ClassComplex:
		return "high"
	default:
		return "medium"
	}
}

// Marker lists are bilingual (Portuguese first) because the app serves
// Portuguese-creole speakers but receives occasional English queries.
var (
	creativeMarkers = []string{
		"crie", "criar", "invente", "inventar", "imagine", "imaginar",
		"sugira", "sugerir", "história", "historia", "poema", "brainstorm",
		"create", "invent", "suggest", "story", "poem",
	}
	complexMarkers = []string{
		"analise", "analisar", "compare", "comparar", "avalie", "avaliar",
		"discuta", "discutir", "por que", "porque", "vantagens", "estratégia", "estrategia",
		"analyze", "evaluate", "discuss", "why", "advantages", "strategy",
	}
	factualMarkers = []string{
		"o que", "que é", "quando", "onde", "quem", "qual", "como",
		"defina", "definir", "explique", "explicar",
		"what", "when", "where", "who", "which", "how", "define", "explain",
	}
)

// Classify assigns a class and derives the decoding configuration for one
// query. It is deterministic: identical strings yield identical results.
func Classify(query string) (Class, types.DecodingConfig) {
	lower := strings.ToLower(strings.TrimSpace(query))
	n := wordCount(lower)

	cls := classify(lower, n)
	return cls, configFor(cls, n)
}

func classify(lower string, n int) Class {
	if containsAny(lower, creativeMarkers) {
		return ClassCreative
	}
	if containsAny(lower, complexMarkers) || n > 20 {
		return ClassComplex
	}
	if containsAny(lower, factualMarkers) && n <= 5 {
		return ClassFactual
	}
	if strings.HasSuffix(lower, "?") && n <= 5 {
		return ClassFactual
	}
	return ClassStandard
}

// configFor returns the decoding defaults for a class. Output budgets scale
// with query length; wall-clock budgets stay strictly below the
// orchestrator's per-request deadline.
func configFor(cls Class, n int) types.DecodingConfig {
	switch cls {
	case ClassFactual:
		return types.DecodingConfig{
			MaxNewTokens:        minInt(200, 100+8*n),
			Temperature:         0.3,
			TopP:                0.85,
			TopK:                40,
			RepetitionPenalty:   1.1,
			NoRepeatNGram:       3,
			EarlyStop:           true,
			MaxWallClockSeconds: 15,
		}
	case ClassComplex:
		return types.DecodingConfig{
			MaxNewTokens:        minInt(1200, 500+20*n),
			Temperature:         0.8,
			TopP:                0.92,
			TopK:                60,
			RepetitionPenalty:   1.3,
			NoRepeatNGram:       3,
			EarlyStop:           false,
			MaxWallClockSeconds: 90,
		}
	case ClassCreative:
		return types.DecodingConfig{
			MaxNewTokens:        minInt(1500, 600+25*n),
			Temperature:         0.9,
			TopP:                0.95,
			TopK:                80,
			RepetitionPenalty:   1.1,
			NoRepeatNGram:       3,
			EarlyStop:           false,
			MaxWallClockSeconds: 120,
		}
	default:
		return types.DecodingConfig{
			MaxNewTokens:        minInt(600, 300+15*n),
			Temperature:         0.7,
			TopP:                0.9,
			TopK:                50,
			RepetitionPenalty:   1.2,
			NoRepeatNGram:       3,
			EarlyStop:           true,
			MaxWallClockSeconds: 45,
		}
	}
}

// wordCount counts significant words: runs of letters/digits longer than
// three runes. Articles and connectives do not inflate output budgets.
func wordCount(s string) int {
	count := 0
	runLen := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			runLen++
			continue
		}
		if runLen > 3 {
			count++
		}
		runLen = 0
	}
	if runLen > 3 {
		count++
	}
	return count
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
