package config

// Config holds cardex configuration.
// Loaded from config.yaml with CARDEX_-prefixed env overrides.
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Models    ModelsCfg              `mapstructure:"models" yaml:"models"`
	Batch     BatchCfg               `mapstructure:"batch" yaml:"batch"`
	Google    GoogleCfg              `mapstructure:"google" yaml:"google"`
	Server    ServerCfg              `mapstructure:"server" yaml:"server"`
}

// ProviderCfg configures a vision provider.
type ProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	BaseURL   string  `mapstructure:"base_url" yaml:"base_url"`     // Optional endpoint override
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second, 0 = unlimited
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// ModelsCfg selects the default vision model and the allowlist callers may
// pick from.
type ModelsCfg struct {
	Default string   `mapstructure:"default" yaml:"default"`
	Allowed []string `mapstructure:"allowed" yaml:"allowed"`
}

// BatchCfg tunes batch extraction runs.
type BatchCfg struct {
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`   // Parallel images per batch
	MaxFiles    int    `mapstructure:"max_files" yaml:"max_files"`       // Cap on images per run
	MaxAttempts uint   `mapstructure:"max_attempts" yaml:"max_attempts"` // Model calls per image, counting the first
	RetryDelay  string `mapstructure:"retry_delay" yaml:"retry_delay"`   // Base backoff delay ("1s")
}

// GoogleCfg configures Drive and Sheets access.
type GoogleCfg struct {
	// ServiceAccountJSON is the credentials JSON itself or a path to it
	// (supports ${ENV_VAR} syntax).
	ServiceAccountJSON string `mapstructure:"service_account_json" yaml:"service_account_json"`
	SheetID            string `mapstructure:"sheet_id" yaml:"sheet_id"`
	SheetName          string `mapstructure:"sheet_name" yaml:"sheet_name"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Models: ModelsCfg{
			Default: "anthropic/claude-3.5-sonnet",
			Allowed: []string{
				"anthropic/claude-3.5-sonnet",
				"openai/gpt-4o",
				"openai/gpt-4o-mini",
				"google/gemini-2.0-flash-001",
			},
		},
		Batch: BatchCfg{
			Concurrency: 3,
			MaxFiles:    200,
			MaxAttempts: 3,
			RetryDelay:  "1s",
		},
		Google: GoogleCfg{
			ServiceAccountJSON: "${GOOGLE_SERVICE_ACCOUNT_JSON}",
			SheetName:          "Sheet1",
		},
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// ModelAllowed reports whether the model may be used for extraction. An
// empty allowlist permits any model.
func (c *Config) ModelAllowed(model string) bool {
	if len(c.Models.Allowed) == 0 {
		return true
	}
	for _, allowed := range c.Models.Allowed {
		if allowed == model {
			return true
		}
	}
	return false
}
