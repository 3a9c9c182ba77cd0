package translation

import "strings"

// Model identifies a concrete provider model. The set is closed; anything
// the caller sends is normalized into it once at ingress.
type Model string

const (
	// ModelAuto lets the orchestrator pick by input length.
	ModelAuto Model = "auto"

	// ModelGeminiFlash is the fast cross-provider family.
	ModelGeminiFlash Model = "gemini-2.0-flash"

	// ModelGPT4oMini is the cheap deep-adapter model and the fallback target.
	ModelGPT4oMini Model = "gpt-4o-mini"

	// ModelGPT4o is the premium deep-adapter model.
	ModelGPT4o Model = "gpt-4o"
)

// Family names the provider a model belongs to.
type Family string

const (
	FamilyGemini Family = "gemini"
	FamilyOpenAI Family = "openai"
)

// Family returns the provider family serving the model.
func (m Model) Family() Family {
	if strings.HasPrefix(string(m), "gemini") {
		return FamilyGemini
	}
	return FamilyOpenAI
}

// modelAliases maps legacy and shorthand model names onto the closed set.
var modelAliases = map[string]Model{
	"":                 ModelAuto,
	"auto":             ModelAuto,
	"default":          ModelAuto,
	"gemini":           ModelGeminiFlash,
	"gemini-flash":     ModelGeminiFlash,
	"gemini-1.5-flash": ModelGeminiFlash,
	"gemini-2.0-flash": ModelGeminiFlash,
	"gpt-4o-mini":      ModelGPT4oMini,
	"gpt4o-mini":       ModelGPT4oMini,
	"gpt-3.5-turbo":    ModelGPT4oMini,
	"gpt-4o":           ModelGPT4o,
	"gpt4o":            ModelGPT4o,
	"gpt-4":            ModelGPT4o,
	"gpt-4-turbo":      ModelGPT4o,
}

// NormalizeModel maps a caller-supplied model name onto the closed model
// set. Unknown names resolve to ModelAuto rather than failing; the
// orchestrator then picks a sensible model itself.
func NormalizeModel(name string) Model {
	if model, ok := modelAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return model
	}
	return ModelAuto
}

// QualityProfile fixes the model, sampling temperature, and token ceiling
// for one quality tier.
type QualityProfile struct {
	Model       Model
	Temperature float32
	MaxTokens   int
}

// qualityProfiles maps tier (1-5) to its profile. Higher tiers never use a
// cheaper model than lower tiers.
var qualityProfiles = map[int]QualityProfile{
	1: {Model: ModelGPT4oMini, Temperature: 0.5, MaxTokens: 1000},
	2: {Model: ModelGPT4oMini, Temperature: 0.4, MaxTokens: 1500},
	3: {Model: ModelGPT4oMini, Temperature: 0.3, MaxTokens: 2000},
	4: {Model: ModelGPT4o, Temperature: 0.3, MaxTokens: 2500},
	5: {Model: ModelGPT4o, Temperature: 0.2, MaxTokens: 2500},
}

// ProfileFor returns the quality profile for a tier, clamping out-of-range
// tiers to the nearest valid one.
func ProfileFor(tier int) QualityProfile {
	if tier < 1 {
		tier = 1
	}
	if tier > 5 {
		tier = 5
	}
	return qualityProfiles[tier]
}
