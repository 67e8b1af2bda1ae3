package config

// Config represents the main application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Model   ModelConfig   `yaml:"model"`
	Chat    ChatConfig    `yaml:"chat"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds API-related settings.
type APIConfig struct {
	// Default Gemini API key, used when a persona has no key of its own.
	// Environment variables take priority over this value.
	GeminiKey string `yaml:"gemini_key,omitempty"`
}

// ModelConfig holds generation parameters applied to every request.
type ModelConfig struct {
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// ChatConfig holds conversation behavior settings.
type ChatConfig struct {
	// EnableSearch is the initial state of the web-search toggle.
	EnableSearch bool `yaml:"enable_search"`

	// ThinkingBudget is the reasoning token budget attached to requests
	// against personas that declare thinking support.
	ThinkingBudget int32 `yaml:"thinking_budget"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	// MarkdownWidth is the wrap width for rendered replies (0 = terminal width).
	MarkdownWidth int `yaml:"markdown_width"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}
