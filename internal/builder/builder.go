package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/drumil32/thumbnail-maker-backend/internal/api"
	sessionapi "github.com/drumil32/thumbnail-maker-backend/internal/api/session"
	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/integration/generation"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/validator"
	"github.com/drumil32/thumbnail-maker-backend/internal/repository"
	"github.com/drumil32/thumbnail-maker-backend/internal/usecase/chat"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Session store (in-memory, TTL-bound)
	sessionStore := repository.NewSessionMemory(cfg.SessionCfg)

	// Generation connector (with mock support)
	var generator chat.GenerationConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the generation service")
		generator = generation.NewMockConnector(logger)
	} else {
		generator = generation.NewConnector(cfg.GenerationCfg, logger)
	}

	// Conversation machine + validator
	fieldValidator := validator.NewFieldValidator(cfg.UploadCfg)
	machine := conversation.NewMachine(fieldValidator, cfg.UploadCfg.MaxIconCount)

	// Session controller
	chatUC := chat.NewUsecase(sessionStore, machine, generator, logger)
	logger.Info("Use cases initialized")

	// HTTP layer
	sessionHandler := sessionapi.NewHandler(chatUC, cfg.UploadCfg)
	router := api.SetupRouter(sessionHandler, logger)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second, // generation responses can be slow
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}
