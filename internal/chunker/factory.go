package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Chunking methods accepted by Factory.
const (
	MethodAuto     = "auto"
	MethodMarkdown = "markdown"
	MethodText     = "text"
)

// Factory builds pipelines for documents, choosing header-aware splitting by
// method and file type.
type Factory struct {
	config Config
}

// NewFactory creates a factory around a base config. The base config is
// validated immediately so that configuration errors surface before any
// document is read.
func NewFactory(config Config) (*Factory, error) {
	if _, _, err := config.Validate(); err != nil {
		return nil, err
	}
	return &Factory{config: config}, nil
}

// Base returns the base config.
func (f *Factory) Base() Config {
	return f.config
}

// ConfigFor returns the config to use for the file at filePath. An explicit
// method forces header splitting on or off. Under MethodAuto the base
// SplitByHeaders is kept, except that plain-text files never split.
func (f *Factory) ConfigFor(filePath, method string) (Config, error) {
	cfg := f.config

	// an explicit method wins
	switch strings.ToLower(method) {
	case "markdown", "md":
		cfg.SplitByHeaders = true
		return cfg, nil
	case "simple", "text", "txt":
		cfg.SplitByHeaders = false
		return cfg, nil
	case "", MethodAuto:
	default:
		return Config{}, fmt.Errorf("unknown chunking method: %s", method)
	}

	// plain-text formats carry no markdown headers; everything else keeps
	// the configured setting
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".txt", ".text", ".pdf":
		cfg.SplitByHeaders = false
	}
	return cfg, nil
}

// PipelineFor returns a validated pipeline for the file at filePath.
func (f *Factory) PipelineFor(filePath, method string) (*Pipeline, error) {
	cfg, err := f.ConfigFor(filePath, method)
	if err != nil {
		return nil, err
	}
	return NewPipeline(cfg)
}
