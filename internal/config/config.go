package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	llmclient "jqery/internal/llm/client"
	"jqery/internal/payload"
)

type Config struct {
	Port    string      `yaml:"port"`
	Env     string      `yaml:"env"`
	LogMode string      `yaml:"log_mode"`
	LLM     LLMConfig   `yaml:"llm"`
	Synth   SynthConfig `yaml:"synth"`
	HTTP    HTTPConfig  `yaml:"http"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

type SynthConfig struct {
	// MaxArrayLength bounds arrays in the prompt copy; 0 disables truncation.
	MaxArrayLength int `yaml:"max_array_length"`
	// CacheSize enables the synthesis LRU when > 0.
	CacheSize int `yaml:"cache_size"`
}

type HTTPConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

const defaultMaxUploadBytes = 10 << 20

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:    ":8080",
		Env:     "local",
		LogMode: "dev",
		LLM: LLMConfig{
			Provider:  llmclient.ProviderAnthropic,
			MaxTokens: llmclient.DefaultMaxTokens,
		},
		Synth: SynthConfig{MaxArrayLength: payload.DefaultMaxArrayLength},
		HTTP:  HTTPConfig{MaxUploadBytes: defaultMaxUploadBytes},
	}
}

// Load reads flags from args (-port, -config), then delegates to LoadFile.
// Flags take precedence over the environment.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("jqery", flag.ContinueOnError)
	port := fs.String("port", "", "server port (overrides PORT)")
	path := fs.String("config", "", "path to a YAML config file (overrides JQERY_CONFIG)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := LoadFile(*path)
	if err != nil {
		return nil, err
	}
	if *port != "" {
		cfg.Port = normalizePort(*port)
	}
	return cfg, nil
}

// LoadFile builds the configuration from defaults, an optional .env file,
// an optional YAML file (path, or JQERY_CONFIG when path is empty), and
// environment variables, in increasing order of precedence.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("JQERY_CONFIG"))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.Port = normalizePort(cfg.Port)
	return &cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() error {
	if v := env("PORT"); v != "" {
		c.Port = v
	}
	if v := env("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := env("LOG_MODE"); v != "" {
		c.LogMode = v
	}
	if v := env("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := env("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := env("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	var errs []error
	if err := envInt("LLM_MAX_TOKENS", &c.LLM.MaxTokens); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("LLM_TRUNCATE_ARRAYS", &c.Synth.MaxArrayLength); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("SYNTH_CACHE_SIZE", &c.Synth.CacheSize); err != nil {
		errs = append(errs, err)
	}
	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		} else {
			c.HTTP.MaxUploadBytes = n
		}
	}
	c.LLM.APIKey = firstNonEmpty(env("LLM_API_KEY"), c.LLM.APIKey, env(apiKeyVar(c.LLM.Provider)))
	return errors.Join(errs...)
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case llmclient.ProviderAnthropic, llmclient.ProviderGemini, llmclient.ProviderOpenAI,
		llmclient.ProviderGroq, llmclient.ProviderFake:
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config: llm max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive, got %d", c.HTTP.MaxUploadBytes)
	}
	return nil
}

// SetProvider switches the LLM provider and re-resolves its API key from
// the environment. An unchanged provider keeps the current key.
func (c *Config) SetProvider(provider string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || provider == c.LLM.Provider {
		return
	}
	c.LLM.Provider = provider
	c.LLM.APIKey = firstNonEmpty(env("LLM_API_KEY"), env(apiKeyVar(provider)))
}

// ClientOptions maps the LLM section onto llmclient.Options.
func (c *Config) ClientOptions() llmclient.Options {
	return llmclient.Options{
		Provider:  c.LLM.Provider,
		Model:     c.LLM.Model,
		APIKey:    c.LLM.APIKey,
		BaseURL:   c.LLM.BaseURL,
		MaxTokens: c.LLM.MaxTokens,
	}
}

func apiKeyVar(provider string) string {
	switch provider {
	case llmclient.ProviderGemini:
		return "GEMINI_API_KEY"
	case llmclient.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llmclient.ProviderGroq:
		return "GROQ_API_KEY"
	case llmclient.ProviderFake:
		return ""
	default:
		return "ANTHROPIC_API_KEY"
	}
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func env(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, dst *int) error {
	v := env(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
