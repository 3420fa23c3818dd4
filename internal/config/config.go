package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider      string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	TelegramToken string

	LogLevel string
	Debug    bool

	WebAddr        string
	AllowedOrigins []string
	PreferIPv4     bool

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
	SessionIdle    time.Duration

	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiTextModel  string
	GeminiImageModel string

	OpenAIBaseURL    string
	OpenAITextModel  string
	OpenAIImageModel string

	BannedWords   []string
	TemplatesFile string
}

// Load reads the environment. The selected provider's credential is required;
// the Telegram token is checked separately by RequireTelegram.
func Load() (Config, error) {
	cfg := Config{
		Provider:         strings.ToLower(getEnv("PROVIDER", ProviderGemini)),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:            getEnvBool("DEBUG", false),
		WebAddr:          getEnv("WEB_ADDR", ":8080"),
		AllowedOrigins:   splitCSV(getEnv("ALLOWED_ORIGINS", "*")),
		PreferIPv4:       getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:    getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		SessionIdle:      time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAITextModel:  getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		BannedWords:      splitCSV(getEnv("BANNED_WORDS", "")),
		TemplatesFile:    getEnv("TEMPLATES_FILE", ""),
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Config{}, errors.New("GEMINI_API_KEY is required")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, errors.New("OPENAI_API_KEY is required")
		}
	default:
		return Config{}, fmt.Errorf("unknown PROVIDER %q (want gemini or openai)", cfg.Provider)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = 60 * time.Minute
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
