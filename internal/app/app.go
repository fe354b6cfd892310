package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stockpulse/internal/analysis"
	"stockpulse/internal/config"
	"stockpulse/internal/infrastructure/httpapi"
	"stockpulse/internal/infrastructure/llm"
	"stockpulse/internal/infrastructure/rate"
	"stockpulse/internal/infrastructure/reddit"
	"stockpulse/internal/infrastructure/scheduler"
	"stockpulse/internal/logging"
	"stockpulse/internal/state"
	"stockpulse/internal/usecase"
)

// Application wires configuration to the pipeline, scheduler, and HTTP API.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	server    *httpapi.Server
}

// New builds a runnable application instance. State is created here, once,
// and shared by reference between the scheduler side and the HTTP side.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	validator, err := analysis.NewValidator(analysis.Schema(cfg.Analyzer.Schema))
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}

	pipelineState := state.New()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      reddit.NewClient(cfg.Reddit, nil),
		Analyzer:    llm.NewGeminiClient(cfg.Analyzer),
		Validator:   validator,
		Pacer:       rate.NewIntervalGate(cfg.Pipeline.PacingDelay()),
		Dedup:       pipelineState.Dedup,
		Store:       pipelineState.Store,
		Frequencies: pipelineState.Frequencies,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Pipeline.Interval(), baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		scheduler: usecase.NewScheduler(driver, pipeline, cfg.Pipeline.FetchLimit, baseLogger.With("component", "scheduler")),
		server:    httpapi.NewServer(cfg.Server, pipelineState),
	}, nil
}

// Run starts the background scheduler and the HTTP server, then blocks until
// the context is canceled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr())
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	return nil
}
