// Package persona holds the static catalog of chat personas. A persona is a
// thin data-driven wrapper over one backing Gemini model: an instruction, a
// pair of capability flags, and an optional user-supplied API key. Persona
// differences are configuration, not code.
package persona

// Config describes a selectable persona.
type Config struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	// Capability flags
	SupportsSearch   bool `json:"supportsSearch"`
	SupportsThinking bool `json:"supportsThinking"`

	// ModelName is the underlying technical Gemini model identifier.
	ModelName string `json:"geminiModelName"`

	// SystemInstruction is the persona-specific voice, layered on top of
	// the shared baseline instruction.
	SystemInstruction string `json:"systemInstruction,omitempty"`

	// UserAPIKey is a user-provided credential for this persona. When
	// empty the process-wide default key is used instead.
	UserAPIKey string `json:"userApiKey,omitempty"`
}

// KeyOverride is a persisted {persona id, key} pair merged onto the catalog
// at load time.
type KeyOverride struct {
	ID         string `json:"id"`
	UserAPIKey string `json:"userApiKey"`
}

// catalog is the built-in persona table. IDs are unique; order is
// presentation order and the first entry doubles as the fallback persona.
var catalog = []Config{
	{
		ID:               "deepseek-r1-sim",
		Name:             "DeepSeek R1 (DeepThink)",
		Provider:         "DeepSeek (Simulated)",
		Description:      "Deep reasoning with a visible thinking process",
		Tags:             []string{"reasoning", "coding", "complex"},
		SupportsSearch:   true,
		SupportsThinking: true,
		ModelName:        "gemini-3-pro-preview",
		SystemInstruction: "You are a simulated version of DeepSeek R1. You are highly intelligent, " +
			"logical, and you 'think' deeply before answering complex questions. When you explain " +
			"things, be extremely detailed and structured.",
	},
	{
		ID:             "gemini-v2-5",
		Name:           "Gemini 2.5 Pro",
		Provider:       "Google",
		Description:    "Most capable official flagship model",
		Tags:           []string{"general", "official", "balanced"},
		SupportsSearch: true,
		ModelName:      "gemini-3-pro-preview",
	},
	{
		ID:             "gemini-flash",
		Name:           "Gemini 2.5 Flash",
		Provider:       "Google",
		Description:    "Fast responses with low latency",
		Tags:           []string{"fast", "chat"},
		SupportsSearch: true,
		ModelName:      "gemini-2.5-flash",
	},
	{
		ID:             "kimi-sim",
		Name:           "Kimi AI (Simulated)",
		Provider:       "Moonshot (Simulated)",
		Description:    "Long-context reading and fluent Chinese writing",
		Tags:           []string{"writing", "chinese"},
		SupportsSearch: true,
		ModelName:      "gemini-3-pro-preview",
		SystemInstruction: "You are a helpful AI assistant simulating the style of Kimi AI. You excel " +
			"at reading long contexts and writing fluent, natural Chinese. Your tone is polite, " +
			"professional, and warm.",
	},
	{
		ID:             "tongyi-sim",
		Name:           "Qwen Max (Simulated)",
		Provider:       "Alibaba (Simulated)",
		Description:    "Broad knowledge, strong on Chinese culture",
		Tags:           []string{"knowledge", "creative"},
		SupportsSearch: true,
		ModelName:      "gemini-3-pro-preview",
		SystemInstruction: "You are simulating Alibaba's Qwen model. You are knowledgeable about " +
			"Chinese culture, history, and modern trends.",
	},
}

// List returns the persona catalog in presentation order.
func List() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog)
	return out
}

// Resolve returns the persona with the given id. An unknown id degrades to
// the first catalog entry so the chat is never left without a usable persona.
func Resolve(id string) Config {
	for _, p := range catalog {
		if p.ID == id {
			return p
		}
	}
	return catalog[0]
}

// ApplyKeyOverrides merges saved key overrides onto a catalog slice,
// preserving every other field. Overrides for unknown ids are ignored.
func ApplyKeyOverrides(personas []Config, overrides []KeyOverride) []Config {
	if len(overrides) == 0 {
		return personas
	}

	byID := make(map[string]string, len(overrides))
	for _, o := range overrides {
		byID[o.ID] = o.UserAPIKey
	}

	out := make([]Config, len(personas))
	copy(out, personas)
	for i := range out {
		if key, ok := byID[out[i].ID]; ok {
			out[i].UserAPIKey = key
		}
	}
	return out
}

// ExtractKeyOverrides returns the overrides currently present in a catalog
// slice, for persistence. Personas without a user key are skipped.
func ExtractKeyOverrides(personas []Config) []KeyOverride {
	var out []KeyOverride
	for _, p := range personas {
		if p.UserAPIKey != "" {
			out = append(out, KeyOverride{ID: p.ID, UserAPIKey: p.UserAPIKey})
		}
	}
	return out
}
