package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"loan-approval-client/internal/common/cache"
	"loan-approval-client/internal/common/config"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/observability"
	"loan-approval-client/internal/common/scoring"
	"loan-approval-client/pkg/registry"
)

// env is everything a subcommand needs, built from flags and config.
type env struct {
	cfg      *config.Config
	log      logger.Logger
	registry *registry.FormRegistry
	client   *scoring.Client
	obs      *observability.Observability
	ui       *renderer

	redis         *cache.RedisClient
	metricsServer *http.Server
}

func setup(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	log := logger.NewStructuredWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
		WithFields(map[string]interface{}{"app": cfg.App.Name})

	reg := registry.Default()
	if opts.optionsFile != "" {
		reg, err = registry.LoadRegistry(opts.optionsFile)
		if err != nil {
			return nil, fmt.Errorf("load form options: %w", err)
		}
	}
	if !reg.HasLanguage(cfg.Session.DefaultLanguage) {
		return nil, fmt.Errorf("session.default_language %q is not a supported language", cfg.Session.DefaultLanguage)
	}

	e := &env{
		cfg:      cfg,
		log:      log,
		registry: reg,
		obs:      observability.New(cfg.App.Name, log),
	}

	var clientOpts []scoring.Option
	if tc := e.translationCache(cmd.Context()); tc != nil {
		clientOpts = append(clientOpts, scoring.WithTranslationCache(tc))
	}
	e.client = scoring.NewClient(cfg.Scoring, log, clientOpts...)

	out := cmd.OutOrStdout()
	color.NoColor = opts.noColor || !isTerminal(out)
	e.ui = newRenderer(out, reg)

	if cfg.Metrics.Enabled {
		e.startMetricsServer()
	}

	log.Debug("client configured", map[string]interface{}{
		"baseUrl":     cfg.Scoring.URL(),
		"pathPrefix":  cfg.Scoring.Prefix(),
		"environment": cfg.App.Environment,
	})
	return e, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// translationCache connects to Redis when configured; an unreachable Redis
// only disables caching.
func (e *env) translationCache(ctx context.Context) *cache.TranslationCache {
	if !e.cfg.Cache.Redis.Enabled() {
		return nil
	}
	rc, err := cache.NewRedis(e.cfg.Cache.Redis)
	if err != nil {
		e.log.Warn("translation cache disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		e.log.Warn("translation cache disabled", map[string]interface{}{"error": err.Error()})
		_ = rc.Close()
		return nil
	}

	e.redis = rc
	return cache.NewTranslationCache(rc.Client, config.GetDuration(e.cfg.Cache.TranslationTTL), e.log)
}

func (e *env) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	e.metricsServer = &http.Server{
		Addr:              e.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := e.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Warn("metrics server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	e.log.Info("serving metrics", map[string]interface{}{"address": e.cfg.Metrics.Address})
}

func (e *env) close() {
	if e.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = e.metricsServer.Shutdown(ctx)
		cancel()
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
	e.obs.Shutdown()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
