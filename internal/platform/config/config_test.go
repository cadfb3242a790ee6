package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"SANITY_PROJECT_ID": "idols01",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Environment != "local" || cfg.Server.CORSOrigins != nil || cfg.Server.TrustProxy {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Sanity.Dataset != "production" {
		t.Errorf("expected production dataset, got %s", cfg.Sanity.Dataset)
	}
	if !cfg.Sanity.UseCDN {
		t.Errorf("expected CDN to be enabled by default")
	}
	if cfg.AI.Provider != AIProviderGroq || cfg.AI.GroqModel != defaultGroqModel {
		t.Errorf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.Enabled() {
		t.Errorf("expected ai to be disabled without a key")
	}
	if cfg.Checkout.WhatsAppNumber != "8273366089" {
		t.Errorf("unexpected whatsapp number %s", cfg.Checkout.WhatsAppNumber)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("unexpected cache ttl %s", cfg.Cache.TTL)
	}
	if cfg.RateLimits.DescriptionPerMinute != 10 {
		t.Errorf("unexpected description rate limit %d", cfg.RateLimits.DescriptionPerMinute)
	}
	if cfg.Logging.File != "" {
		t.Errorf("expected no log file, got %s", cfg.Logging.File)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"STOREFRONT_PORT":            "9090",
		"STOREFRONT_PUBLIC_BASE_URL": "https://idols.example.com/",
		"STOREFRONT_CACHE_TTL":       "0s",
		"STOREFRONT_ENV":             "Production",
		"STOREFRONT_CORS_ORIGINS":    "https://studio.example.com, ,https://admin.example.com",
		"STOREFRONT_TRUST_PROXY":     "true",
		"SANITY_PROJECT_ID":          "idols01",
		"SANITY_DATASET":             "staging",
		"SANITY_API_VERSION":         "v2023-05-03",
		"SANITY_USE_CDN":             "off",
		"AI_PROVIDER":                "Gemini",
		"GEMINI_API_KEY":             "gm-key",
		"AI_TEMPERATURE":             "0.2",
		"WHATSAPP_NUMBER":            "919999999999",
		"LOG_FILE":                   "/var/log/storefront.log",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.PublicBaseURL != "https://idols.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Server.PublicBaseURL)
	}
	if cfg.Server.Environment != "production" {
		t.Errorf("expected lowercased environment, got %s", cfg.Server.Environment)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.TrustProxy {
		t.Errorf("expected trust proxy enabled")
	}
	if cfg.Cache.TTL != 0 {
		t.Errorf("expected caching disabled, got %s", cfg.Cache.TTL)
	}
	if cfg.Sanity.APIVersion != "2023-05-03" || cfg.Sanity.UseCDN {
		t.Errorf("unexpected sanity config %+v", cfg.Sanity)
	}
	if cfg.AI.Provider != AIProviderGemini || !cfg.AI.Enabled() {
		t.Errorf("expected gemini provider enabled, got %+v", cfg.AI)
	}
	if cfg.AI.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.AI.Temperature)
	}
	if cfg.Checkout.WhatsAppNumber != "919999999999" {
		t.Errorf("unexpected whatsapp number %s", cfg.Checkout.WhatsAppNumber)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"AI_PROVIDER":     "openai",
		"WHATSAPP_NUMBER": "+91 99999",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := map[string]bool{"Sanity.ProjectID": true, "AI.Provider": true, "Checkout.WhatsAppNumber": true}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("expected %d invalid fields, got %v", len(want), fields)
	}
	for _, field := range fields {
		if !want[field] {
			t.Errorf("unexpected invalid field %s", field)
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nSANITY_PROJECT_ID=fromfile\nexport GROQ_API_KEY=\"gsk-file\"\nSTOREFRONT_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"STOREFRONT_PORT": "7100"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Sanity.ProjectID != "fromfile" {
		t.Errorf("expected project from file, got %s", cfg.Sanity.ProjectID)
	}
	if cfg.AI.GroqAPIKey != "gsk-file" || !cfg.AI.Enabled() {
		t.Errorf("expected groq key from file, got %q", cfg.AI.GroqAPIKey)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("expected env map to win over file, got %s", cfg.Server.Port)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(context.Background(),
		WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"SANITY_PROJECT_ID": "idols01"}),
	)
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
