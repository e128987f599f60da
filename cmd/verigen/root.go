package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/config"
	"github.com/amishk599/verigen/internal/generator"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/ratelimit"
	"github.com/amishk599/verigen/internal/retry"
	"github.com/amishk599/verigen/internal/session"
	"github.com/amishk599/verigen/internal/store"
)

var (
	cfgPath string
	debug   bool
	noStore bool
)

var rootCmd = &cobra.Command{
	Use:   "verigen",
	Short: "Generate Verilog modules and testbenches with an LLM",
	Long: "verigen turns a circuit description into a Verilog module and a matching testbench " +
		"using OpenAI, Google, Groq or OpenRouter models.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VERIGEN_CONFIG env var or ./verigen.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "keep keys, drafts and results in memory only")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > VERIGEN_CONFIG env var > "./verigen.yaml".
// Without an explicit path a missing file means defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("VERIGEN_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = "verigen.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// setupLogger logs to stderr so generated code on stdout stays clean.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger is used while a TUI owns the terminal; any log output would
// corrupt the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (model.Store, error) {
	if noStore {
		logger.Debug("using in-memory store")
		return store.NewMemoryStore(), nil
	}

	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		logger.Debug("using redis store", "prefix", cfg.RedisPrefix)
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
		logger.Debug("using sqlite store", "path", cfg.Path)
		ss, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return ss, nil
	}
}

// providerFactory builds providers wrapped as
// retry → rate limit → (direct → gateway fallback).
// All providers share one limiter so spacing holds across generations.
func providerFactory(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) generator.ProviderFactory {
	limiter := ratelimit.NewPerProviderRateLimiter(cfg.LLM.RateLimit.MinDelayFor)
	providerCfg := cfg.LLM.ProviderConfig()

	return func(ctx context.Context, target model.Target, apiKey string) (ai.LLMProvider, error) {
		p, err := ai.NewProvider(ctx, target, apiKey, providerCfg, httpClient, logger)
		if err != nil {
			return nil, err
		}
		p = ratelimit.NewRateLimitedProvider(p, limiter, target.Provider)
		return retry.NewRetryProvider(p, target.Provider, cfg.LLM.Retry.MaxRetries, cfg.LLM.Retry.BaseDelay, logger), nil
	}
}

// app bundles everything a command needs once config and store are open.
type app struct {
	cfg    *config.Config
	store  model.Store
	sess   *session.Session
	gen    *generator.Generator
	logger *slog.Logger
}

func newApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	sess := session.New(st)
	gen := generator.New(providerFactory(cfg, httpClient, logger), sess, st, cfg.LLM.Timeout, logger)

	return &app{cfg: cfg, store: st, sess: sess, gen: gen, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}
