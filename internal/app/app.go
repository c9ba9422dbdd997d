package app

import (
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"chunkforge/internal/chunker"
	"chunkforge/internal/config"
	"chunkforge/internal/logger"
	"chunkforge/internal/metrics"
	"chunkforge/internal/source"
)

type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	metrics  *metrics.Metrics
	provider source.Provider
	factory  *chunker.Factory
	cache    *lru.Cache[cacheKey, []chunker.Chunk]
	out      io.Writer
}

// Option customizes an App.
type Option func(*App)

// WithProvider replaces the filesystem content provider.
func WithProvider(p source.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithOutput sets where the interactive loop prints previews.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// New validates the configuration and wires the app. Configuration errors
// are returned here, before any document is read.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory, err := chunker.NewFactory(cfg.Segmentation())
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      logger.Nop(),
		provider: source.NewFileProvider(cfg.DataDir),
		factory:  factory,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}

	if cfg.CacheSize > 0 {
		a.cache, err = lru.New[cacheKey, []chunker.Chunk](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	return a, nil
}

// Metrics returns the app's metrics collector.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
