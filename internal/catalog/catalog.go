package catalog

// Quantization level of a model snapshot.
type Quant string

const (
	QuantNone Quant = "none"
	Quant4Bit Quant = "4bit"
	QuantBF16 Quant = "bf16"
)

// Capability flags a descriptor can carry.
type Capability string

const (
	CapText  Capability = "text"
	CapImage Capability = "image"
	CapAudio Capability = "audio"
)

// Canonical request domains. Prompt registry domains are a superset of these.
const (
	DomainMedical     = "medical"
	DomainEducation   = "education"
	DomainAgriculture = "agriculture"
	DomainWellness    = "wellness"
	DomainTranslation = "translation"
	DomainMultimodal  = "multimodal"
	DomainGeneral     = "general"
)

// Descriptor is one catalog entry. Descriptors are process-lifetime constants;
// the selector never mutates them.
type Descriptor struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Family           string       `json:"family"`
	Quant            Quant        `json:"quant"`
	RAMRequirementMB int          `json:"ram_requirement_mb"`
	Affinities       []string     `json:"affinities"`
	Capabilities     []Capability `json:"capabilities"`
	// Preferred driver family for this snapshot: native|pipeline|hybrid|remote.
	LoadHint string `json:"load_hint"`
	// Optional on-disk snapshot path, resolved relative to the models dir.
	ModelPath string `json:"model_path,omitempty"`
	// Model tag on the remote inference server, e.g. "gemma3n:e4b".
	RemoteName string `json:"remote_name,omitempty"`
	// When set, this descriptor reuses the live weights of another entry
	// instead of loading its own copy.
	WeightsAlias string `json:"weights_alias,omitempty"`
}

// HasCapability reports whether the descriptor covers c.
func (d Descriptor) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// HasAffinity reports whether the descriptor is tagged for the domain.
func (d Descriptor) HasAffinity(domain string) bool {
	for _, a := range d.Affinities {
		if a == domain {
			return true
		}
	}
	return false
}

// Default is the built-in Gemma-3n catalog. RAM figures follow the published
// per-variant requirements; the lite entry is the last-resort snapshot for
// very low-memory devices.
func Default() []Descriptor {
	return []Descriptor{
		{
			ID:               "gemma3n-e4b",
			Name:             "Gemma 3n E4B",
			Family:           "gemma-3n",
			Quant:            QuantBF16,
			RAMRequirementMB: 3072,
			Affinities:       []string{DomainMedical, DomainEducation, DomainAgriculture},
			Capabilities:     []Capability{CapText, CapImage, CapAudio},
			LoadHint:         "native",
			ModelPath:        "gemma-3n-e4b.gguf",
			RemoteName:       "gemma3n:e4b",
		},
		{
			ID:               "gemma3n-e4b-mm",
			Name:             "Gemma 3n E4B (multimodal)",
			Family:           "gemma-3n",
			Quant:            QuantBF16,
			RAMRequirementMB: 3072,
			Affinities:       []string{DomainMultimodal},
			Capabilities:     []Capability{CapText, CapImage, CapAudio},
			LoadHint:         "native",
			ModelPath:        "gemma-3n-e4b.gguf",
			RemoteName:       "gemma3n:e4b",
			WeightsAlias:     "gemma3n-e4b",
		},
		{
			ID:               "gemma3n-latest",
			Name:             "Gemma 3n Latest",
			Family:           "gemma-3n",
			Quant:            QuantBF16,
			RAMRequirementMB: 2560,
			Affinities:       []string{DomainGeneral, DomainEducation, DomainAgriculture},
			Capabilities:     []Capability{CapText},
			LoadHint:         "hybrid",
			ModelPath:        "gemma-3n-latest.gguf",
			RemoteName:       "gemma3n:latest",
		},
		{
			ID:               "gemma3n-e2b",
			Name:             "Gemma 3n E2B",
			Family:           "gemma-3n",
			Quant:            Quant4Bit,
			RAMRequirementMB: 2048,
			Affinities:       []string{DomainMedical, DomainWellness, DomainTranslation},
			Capabilities:     []Capability{CapText},
			LoadHint:         "pipeline",
			ModelPath:        "gemma-3n-e2b-q4.gguf",
			RemoteName:       "gemma3n:e2b",
		},
		{
			ID:               "gemma3n-lite",
			Name:             "Gemma 3n Lite",
			Family:           "gemma-3n",
			Quant:            Quant4Bit,
			RAMRequirementMB: 512,
			Affinities:       []string{DomainGeneral, DomainTranslation},
			Capabilities:     []Capability{CapText},
			LoadHint:         "remote",
			ModelPath:        "gemma-3n-lite-q4.gguf",
			RemoteName:       "gemma3n:e2b",
		},
	}
}
