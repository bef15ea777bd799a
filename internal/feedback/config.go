package feedback

// Config holds generation settings.
type Config struct {
	AdviceMaxTokens  int     `mapstructure:"advice_max_tokens"`
	ExplainMaxTokens int     `mapstructure:"explain_max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
}

// DefaultConfig returns sensible defaults for feedback generation.
func DefaultConfig() Config {
	return Config{
		AdviceMaxTokens:  1024,
		ExplainMaxTokens: 256,
		Temperature:      0.4,
	}
}
