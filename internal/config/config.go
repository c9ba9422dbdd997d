package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"chunkforge/internal/chunker"
)

type Config struct {
	ChunkSize         int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap      int    `env:"CHUNK_OVERLAP" envDefault:"200"`
	PreserveStructure bool   `env:"PRESERVE_STRUCTURE" envDefault:"true"`
	SplitByHeaders    bool   `env:"SPLIT_BY_HEADERS" envDefault:"true"`
	ChunkMethod       string `env:"CHUNK_METHOD" envDefault:"auto" validate:"oneof=auto markdown md text txt simple"`

	DataDir          string `env:"DATA_DIR"`
	PreviewDocuments int    `env:"PREVIEW_DOCUMENTS" envDefault:"3" validate:"gt=0"`
	PreviewChunks    int    `env:"PREVIEW_CHUNKS" envDefault:"5" validate:"gt=0"`
	PreviewOutline   bool   `env:"PREVIEW_OUTLINE" envDefault:"true"`
	MaxConcurrency   int    `env:"MAX_CONCURRENCY" envDefault:"4" validate:"gt=0"`
	CacheSize        int    `env:"CACHE_SIZE" envDefault:"128" validate:"gte=0"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogPretty   bool   `env:"LOG_PRETTY" envDefault:"true"`
	MetricsAddr string `env:"METRICS_ADDR"`
	Output      string `env:"OUTPUT"`
	ReportFile  string `env:"REPORT_FILE"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Init parses the environment into cfg and validates it.
func Init(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the service settings and the segmentation settings. The
// latter are checked by the chunker so the error is a *chunker.ConfigError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, _, err := c.Segmentation().Validate(); err != nil {
		return err
	}
	return nil
}

// Segmentation returns the chunker settings.
func (c *Config) Segmentation() chunker.Config {
	return chunker.Config{
		ChunkSize:         c.ChunkSize,
		ChunkOverlap:      c.ChunkOverlap,
		PreserveStructure: c.PreserveStructure,
		SplitByHeaders:    c.SplitByHeaders,
	}
}
