package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/viper"

	"github.com/skyvis/skyvis/internal/api"
	"github.com/skyvis/skyvis/internal/auth"
	"github.com/skyvis/skyvis/internal/cache"
	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/visibility"
)

func main() {
	// Optional .env for local development; real env vars win on conflict.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("SKYVIS_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	registry, err := loadFacilities(logger)
	if err != nil {
		logger.Error("invalid facility configuration", "error", err)
		os.Exit(1)
	}

	engineCfg := loadEngineConfig(logger)
	engine := visibility.NewEngine(registry, logger, engineCfg.Workers)

	clock := clockwork.NewRealClock()
	results := cache.New(engineCfg.CacheTTL, clock)

	apiCfg := loadAPIConfig(logger)
	srv := api.NewServer(addr, logger, authCfg, apiCfg, engine, registry, results, clock)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"facilities", registry.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SKYVIS_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SKYVIS_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SKYVIS_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SKYVIS_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// engineConfig holds visibility engine tunables loaded from environment variables.
type engineConfig struct {
	Workers  int
	CacheTTL time.Duration
}

func loadEngineConfig(logger *slog.Logger) engineConfig {
	cfg := engineConfig{
		Workers:  runtime.NumCPU(),
		CacheTTL: 5 * time.Minute,
	}

	if v := os.Getenv("SKYVIS_ENGINE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYVIS_ENGINE_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("SKYVIS_RESULT_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYVIS_RESULT_CACHE_TTL value, using default", "value", v, "default", 300)
		} else {
			cfg.CacheTTL = time.Duration(n) * time.Second
		}
	}

	logger.Info("engine config",
		"workers", cfg.Workers,
		"result_cache_ttl_seconds", cfg.CacheTTL.Seconds(),
	)

	return cfg
}

func loadAPIConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{
		DefaultWindow:   24 * time.Hour,
		DefaultInterval: 10 * time.Minute,
	}

	if v := os.Getenv("SKYVIS_DEFAULT_WINDOW_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYVIS_DEFAULT_WINDOW_HOURS value, using default", "value", v, "default", 24)
		} else {
			cfg.DefaultWindow = time.Duration(n) * time.Hour
		}
	}

	if v := os.Getenv("SKYVIS_DEFAULT_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYVIS_DEFAULT_INTERVAL_MINUTES value, using default", "value", v, "default", 10)
		} else {
			cfg.DefaultInterval = time.Duration(n) * time.Minute
		}
	}

	if v := os.Getenv("SKYVIS_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SKYVIS_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("api config",
		"default_window_hours", cfg.DefaultWindow.Hours(),
		"default_interval_minutes", cfg.DefaultInterval.Minutes(),
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}

// facilityFile mirrors the facilities YAML layout.
type facilityFile struct {
	Facilities []struct {
		Name  string      `mapstructure:"name"`
		Sites []site.Site `mapstructure:"sites"`
	} `mapstructure:"facilities"`
}

// loadFacilities builds the site registry from the facilities config file.
// A missing file is not fatal: the service starts with an empty registry and
// reports unready until facilities are configured.
func loadFacilities(logger *slog.Logger) (*site.Registry, error) {
	path := os.Getenv("SKYVIS_FACILITIES_FILE")
	if path == "" {
		path = "facilities.yaml"
	}

	registry := site.NewRegistry()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("facilities file not found, starting with empty registry", "path", path)
			return registry, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file facilityFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, f := range file.Facilities {
		if f.Name == "" {
			return nil, fmt.Errorf("facility in %s is missing a name", path)
		}
		registry.Register(site.NewStaticFacility(f.Name, f.Sites...))
		logger.Info("registered facility", "facility", f.Name, "sites", len(f.Sites))
	}

	return registry, nil
}
