// Package app assembles the services shared by the web and bot binaries.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"marketing-studio/internal/config"
	"marketing-studio/internal/filter"
	"marketing-studio/internal/gemini"
	"marketing-studio/internal/generation"
	"marketing-studio/internal/httpclient"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/openaigen"
	"marketing-studio/internal/orchestrator"
	"marketing-studio/internal/session"
)

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	HTTPClient   *http.Client
	Orchestrator *orchestrator.Orchestrator
	Templates    *marketing.Library
	Sessions     *session.Store
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})

	backend, err := NewBackend(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	words := cfg.BannedWords
	if len(words) == 0 {
		words = filter.DefaultBannedWords
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Client: backend,
		Filter: filter.New(words),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	templates, err := marketing.LoadLibrary(cfg.TemplatesFile)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(session.StoreOptions{
		Generator:   orch,
		IdleTimeout: cfg.SessionIdle,
		Logger:      logger,
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		HTTPClient:   httpClient,
		Orchestrator: orch,
		Templates:    templates,
		Sessions:     sessions,
	}, nil
}

// NewBackend returns the generation client for cfg.Provider.
func NewBackend(cfg config.Config, httpClient *http.Client, logger *slog.Logger) (generation.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	case config.ProviderOpenAI:
		return openaigen.New(openaigen.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.OpenAITextModel,
			ImageModel: cfg.OpenAIImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func NewLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
