package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"studio/internal/adapter/repo"
	"studio/internal/assets"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/production"
	"studio/internal/providers/imagegen"
	"studio/internal/providers/speech"
	"studio/internal/providers/storyboard"
	"studio/internal/providers/text"
	"studio/internal/storage"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Asset sink: Postgres when DATABASE_URL is set, local filesystem
	// otherwise.
	var sink assets.Sink
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		sink = repo.NewAssetRepository(dbpool)
		logger.Info().Msg("persisting assets to postgres")
	} else {
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open asset store")
		}
		fileSink, err := assets.NewFileSink(store)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build file sink")
		}
		sink = fileSink
		logger.Info().Str("path", cfg.StoragePath).Msg("persisting assets to filesystem")
	}

	adapters := buildAdapters(cfg, logger)

	svc := production.NewService(production.Options{
		Adapters:    adapters,
		Sink:        sink,
		Logger:      logger,
		TaskTimeout: cfg.TaskTimeout,
	})

	app := handlers.NewApp(svc, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildAdapters wires the configured upstream capabilities. A missing API key
// leaves that adapter nil; the matching tasks then fail individually while
// the rest of a run proceeds.
func buildAdapters(cfg *infra.Config, logger infra.Logger) production.Adapters {
	var adapters production.Adapters

	if cfg.LLMAPIKey != "" {
		completer, err := text.NewOpenAICompleter(text.OpenAIOptions{
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build text completer")
		}
		adapters.Text = completer
		adapters.Storyboard = storyboard.NewPlanner(completer)
	} else {
		logger.Warn().Msg("LLM_API_KEY not set; text, analysis and video tasks degrade to fallbacks")
	}

	if cfg.ImageAPIKey != "" {
		generator, err := imagegen.NewOpenAIGenerator(imagegen.OpenAIOptions{
			APIKey:  cfg.ImageAPIKey,
			Model:   cfg.ImageModel,
			BaseURL: cfg.ImageBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build image generator")
		}
		adapters.Image = generator
	} else {
		logger.Warn().Msg("IMAGE_API_KEY not set; image tasks will fail")
	}

	if cfg.SpeechAPIKey != "" {
		synthesizer, err := speech.NewOpenAISynthesizer(speech.OpenAIOptions{
			APIKey:  cfg.SpeechAPIKey,
			Model:   cfg.SpeechModel,
			Voice:   cfg.SpeechVoice,
			BaseURL: cfg.SpeechBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build speech synthesizer")
		}
		adapters.Speech = synthesizer
	} else {
		logger.Warn().Msg("SPEECH_API_KEY not set; audio tasks will fail")
	}

	return adapters
}
