package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/config"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/handler"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/logging"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/ai"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment variables only", zap.Error(envErr))
	}

	personaStore, err := persona.Open(cfg.Persona.File, cfg.Persona.DefaultID)
	if err != nil {
		logger.Fatal("failed to load personas", zap.Error(err))
	}

	if !cfg.Assistant.Enabled() {
		logger.Warn("assistant credentials not configured, every reply will fall back",
			zap.String("provider", string(cfg.Assistant.Provider)))
	}

	// 凭证在每次请求时从环境变量读取，便于轮换
	credentials := ai.EnvCredential(config.EnvAssistantAPIKey)
	widgets := widget.NewService(personaStore, func(ctx context.Context, p persona.Persona) (ai.Client, error) {
		return ai.NewClient(ctx, cfg.Assistant, p, credentials, logger)
	}, cfg.Persona.DefaultID, logger)
	defer widgets.Close()

	logger.Info("assistant configured",
		zap.String("provider", string(cfg.Assistant.Provider)),
		zap.String("model", cfg.Assistant.Model),
		zap.String("endpoint", cfg.Assistant.Endpoint()),
		zap.Int("personas", len(personaStore.List())))

	router := handler.NewRouter(cfg.Server, personaStore, widgets, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("portfolio assistant listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
