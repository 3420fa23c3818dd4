package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "TELEGRAM_BOT_TOKEN", "LOG_LEVEL",
		"MAX_CONCURRENT", "REQUEST_TIMEOUT_SECONDS", "BANNED_WORDS", "ALLOWED_ORIGINS", "SESSION_IDLE_MINUTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", " key ")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != ProviderGemini || cfg.GeminiAPIKey != "key" {
		t.Fatalf("provider = %q key = %q", cfg.Provider, cfg.GeminiAPIKey)
	}
	if cfg.MaxConcurrent != 4 || cfg.RequestTimeout != 180*time.Second || cfg.SessionIdle != time.Hour {
		t.Fatalf("defaults = %#v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.GeminiImageModel != "imagen-4.0-generate-001" {
		t.Fatalf("image model = %q", cfg.GeminiImageModel)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Fatal("telegram token should be required by RequireTelegram")
	}
}

func TestLoadFailsFastWithoutCredential(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}

	t.Setenv("PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "set-but-irrelevant")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without OPENAI_API_KEY")
	}

	t.Setenv("PROVIDER", "bard")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("BANNED_WORDS", "foo, bar ,,baz")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.MaxConcurrent != 1 {
		t.Fatalf("max concurrent should clamp to 1, got %d", cfg.MaxConcurrent)
	}
	if len(cfg.BannedWords) != 3 || cfg.BannedWords[1] != "bar" {
		t.Fatalf("banned words = %v", cfg.BannedWords)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}
