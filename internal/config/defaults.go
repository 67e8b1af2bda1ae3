package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Temperature:     0.7,
			MaxOutputTokens: 8192,
		},
		Chat: ChatConfig{
			EnableSearch:   true,
			ThinkingBudget: 4096,
		},
		UI: UIConfig{
			MarkdownWidth: 0,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
