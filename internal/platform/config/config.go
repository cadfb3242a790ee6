package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultEnvironment         = "local"
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 120 * time.Second
	defaultShutdownTimeout     = 15 * time.Second
	defaultSanityDataset       = "production"
	defaultSanityAPIVersion    = "2024-01-01"
	defaultSanityTimeout       = 10 * time.Second
	defaultAIProvider          = AIProviderGroq
	defaultGroqBaseURL         = "https://api.groq.com/openai/v1"
	defaultGroqModel           = "llama3-70b-8192"
	defaultGeminiModel         = "gemini-2.0-flash"
	defaultAITemperature       = 0.7
	defaultAITimeout           = 30 * time.Second
	defaultWhatsAppNumber      = "8273366089"
	defaultContentDir          = "content/pages"
	defaultCacheTTL            = time.Minute
	defaultContentCacheTTL     = 5 * time.Minute
	defaultDescriptionPerMin   = 10
	defaultFeaturedLimit       = 8
	defaultLogFileMaxSizeMB    = 100
	defaultLogFileMaxBackups   = 5
	defaultLogFileMaxAgeInDays = 28
)

// AI provider identifiers accepted by AI_PROVIDER.
const (
	AIProviderGroq   = "groq"
	AIProviderGemini = "gemini"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Sanity     SanityConfig
	AI         AIConfig
	Checkout   CheckoutConfig
	Content    ContentConfig
	Cache      CacheConfig
	RateLimits RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	Environment     string
	PublicBaseURL   string
	CORSOrigins     []string
	// TrustProxy takes client addresses from X-Forwarded-For and X-Real-IP. Enable only
	// behind a proxy that overwrites those headers.
	TrustProxy      bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SanityConfig points at the record store project.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	Timeout    time.Duration
}

// AIConfig selects and configures the description generator.
type AIConfig struct {
	Provider     string
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float64
	Timeout      time.Duration
}

// Enabled reports whether the selected provider has credentials.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case AIProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return c.GroqAPIKey != ""
	}
}

// CheckoutConfig holds the messaging hand-off target.
type CheckoutConfig struct {
	WhatsAppNumber string
}

// ContentConfig locates the static page sources.
type ContentConfig struct {
	Dir      string
	CacheTTL time.Duration
}

// CacheConfig controls the read-through catalog cache. A zero TTL disables caching.
type CacheConfig struct {
	TTL           time.Duration
	FeaturedLimit int
}

// RateLimitConfig controls request throttling.
type RateLimitConfig struct {
	DescriptionPerMinute int
}

// LoggingConfig controls the optional rotating log file. Level is read by the logger itself.
type LoggingConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file and the environment.
// Precedence, lowest first: defaults, .env, process environment, WithEnvMap.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "STOREFRONT_PORT", defaultPort),
			Environment:     strings.ToLower(stringWithDefault(lookup, "STOREFRONT_ENV", defaultEnvironment)),
			PublicBaseURL:   strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_PUBLIC_BASE_URL", ""), "/"),
			CORSOrigins:     stringList(lookup, "STOREFRONT_CORS_ORIGINS"),
			TrustProxy:      boolWithDefault(lookup, "STOREFRONT_TRUST_PROXY", false),
			ReadTimeout:     durationWithDefault(lookup, "STOREFRONT_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "STOREFRONT_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "STOREFRONT_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "STOREFRONT_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Sanity: SanityConfig{
			ProjectID:  stringWithDefault(lookup, "SANITY_PROJECT_ID", ""),
			Dataset:    stringWithDefault(lookup, "SANITY_DATASET", defaultSanityDataset),
			APIVersion: strings.TrimPrefix(stringWithDefault(lookup, "SANITY_API_VERSION", defaultSanityAPIVersion), "v"),
			Token:      stringWithDefault(lookup, "SANITY_API_TOKEN", ""),
			UseCDN:     boolWithDefault(lookup, "SANITY_USE_CDN", true),
			Timeout:    durationWithDefault(lookup, "SANITY_TIMEOUT", defaultSanityTimeout),
		},
		AI: AIConfig{
			Provider:     strings.ToLower(stringWithDefault(lookup, "AI_PROVIDER", defaultAIProvider)),
			GroqAPIKey:   stringWithDefault(lookup, "GROQ_API_KEY", ""),
			GroqBaseURL:  strings.TrimRight(stringWithDefault(lookup, "GROQ_BASE_URL", defaultGroqBaseURL), "/"),
			GroqModel:    stringWithDefault(lookup, "GROQ_MODEL", defaultGroqModel),
			GeminiAPIKey: stringWithDefault(lookup, "GEMINI_API_KEY", ""),
			GeminiModel:  stringWithDefault(lookup, "GEMINI_MODEL", defaultGeminiModel),
			Temperature:  floatWithDefault(lookup, "AI_TEMPERATURE", defaultAITemperature),
			Timeout:      durationWithDefault(lookup, "AI_TIMEOUT", defaultAITimeout),
		},
		Checkout: CheckoutConfig{
			WhatsAppNumber: stringWithDefault(lookup, "WHATSAPP_NUMBER", defaultWhatsAppNumber),
		},
		Content: ContentConfig{
			Dir:      stringWithDefault(lookup, "STOREFRONT_CONTENT_DIR", defaultContentDir),
			CacheTTL: durationWithDefault(lookup, "STOREFRONT_CONTENT_CACHE_TTL", defaultContentCacheTTL),
		},
		Cache: CacheConfig{
			TTL:           durationWithDefault(lookup, "STOREFRONT_CACHE_TTL", defaultCacheTTL),
			FeaturedLimit: intWithDefault(lookup, "STOREFRONT_FEATURED_LIMIT", defaultFeaturedLimit),
		},
		RateLimits: RateLimitConfig{
			DescriptionPerMinute: intWithDefault(lookup, "STOREFRONT_RATE_LIMIT_DESCRIPTIONS", defaultDescriptionPerMin),
		},
		Logging: LoggingConfig{
			File:       stringWithDefault(lookup, "LOG_FILE", ""),
			MaxSizeMB:  intWithDefault(lookup, "LOG_FILE_MAX_SIZE_MB", defaultLogFileMaxSizeMB),
			MaxBackups: intWithDefault(lookup, "LOG_FILE_MAX_BACKUPS", defaultLogFileMaxBackups),
			MaxAgeDays: intWithDefault(lookup, "LOG_FILE_MAX_AGE_DAYS", defaultLogFileMaxAgeInDays),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if strings.TrimSpace(cfg.Sanity.ProjectID) == "" {
		invalid = append(invalid, "Sanity.ProjectID")
	}
	if strings.TrimSpace(cfg.Sanity.Dataset) == "" {
		invalid = append(invalid, "Sanity.Dataset")
	}
	switch cfg.AI.Provider {
	case AIProviderGroq, AIProviderGemini:
	default:
		invalid = append(invalid, "AI.Provider")
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		invalid = append(invalid, "AI.Temperature")
	}
	if strings.Trim(cfg.Checkout.WhatsAppNumber, "0123456789") != "" {
		invalid = append(invalid, "Checkout.WhatsAppNumber")
	}
	if cfg.Cache.TTL < 0 {
		invalid = append(invalid, "Cache.TTL")
	}
	if cfg.Cache.FeaturedLimit <= 0 {
		invalid = append(invalid, "Cache.FeaturedLimit")
	}
	if cfg.RateLimits.DescriptionPerMinute < 0 {
		invalid = append(invalid, "RateLimits.DescriptionPerMinute")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func stringList(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
