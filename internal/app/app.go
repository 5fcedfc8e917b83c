package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"ai-terminal/internal/api"
	"ai-terminal/internal/config"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/service"
)

// App is the relay server with its dependencies.
type App struct {
	Server *http.Server
	Relay  *llm.Relay
}

// Run starts the relay server and blocks until it stops. It returns the
// process exit code.
func Run() int {
	cfg, err := Bootstrap(os.Stdout, "")
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

// Bootstrap loads configuration and installs the JSON logger writing to w.
// A non-empty level overrides LOG_LEVEL.
func Bootstrap(w io.Writer, level string) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if level == "" {
		level = cfg.LogLevel
	}
	setupLogger(level, w)
	logConfigSource()
	return cfg, nil
}

// NewApp wires the relay: endpoints, handlers and the HTTP server.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}

	endpoints := llm.NewEndpoints(cfg.OpenAIBaseURL, cfg.AnthropicBaseURL, cfg.DeepSeekBaseURL, cfg.AnthropicVersion)
	// No client timeout: replies stream for as long as the provider keeps writing.
	relay := llm.NewRelay(endpoints, &http.Client{})

	chatHandler := api.NewChatHandler(relay)
	modelHandler := api.NewModelHandler(service.NewModelService())
	router := api.NewRouter(chatHandler, modelHandler, staticDir(cfg.StaticDir))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{Server: server, Relay: relay}, nil
}

// Serve runs the relay until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort)
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Server.Shutdown(shutdownCtx)
}

func staticDir(dir string) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Info("Static directory not found, front end will not be served", "dir", dir)
		return ""
	}
	return dir
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string, w io.Writer) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
