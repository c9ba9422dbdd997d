package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"chunkforge/internal/chunker"
)

// Segmentation modes, used as log and metric labels.
const (
	modePreview  = "preview"
	modeGenerate = "generate"
)

type cacheKey struct {
	documentID  string
	configHash  string
	contentHash string
}

// pipelineFor builds the pipeline for one document. Preview and generation
// both go through here, so the overlap clamp and its warning are identical
// on both paths.
func (a *App) pipelineFor(documentID string) (*chunker.Pipeline, error) {
	p, err := a.factory.PipelineFor(documentID, a.cfg.ChunkMethod)
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings() {
		a.metrics.ConfigWarningsTotal.Inc()
		a.log.Warn().
			Str("document", documentID).
			Str("field", w.Field).
			Msg(w.Message)
	}
	return p, nil
}

// segment returns all chunks of a document, using the result cache.
func (a *App) segment(ctx context.Context, mode string, p *chunker.Pipeline, documentID, text string) ([]chunker.Chunk, error) {
	cfg := p.Config()
	key := cacheKey{
		documentID:  documentID,
		configHash:  cfg.Hash(),
		contentHash: contentHash(text),
	}

	if a.cache != nil {
		if chunks, ok := a.cache.Get(key); ok {
			a.metrics.CacheHitsTotal.Inc()
			a.trace(mode, key, len(chunks), 0, true)
			return chunks, nil
		}
	}

	start := time.Now()
	chunks, err := p.SegmentContext(ctx, documentID, text)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	a.metrics.SegmentDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if a.cache != nil {
		a.cache.Add(key, chunks)
	}
	a.trace(mode, key, len(chunks), elapsed, false)
	return chunks, nil
}

// trace writes the per-call trace record keyed by (document, config hash).
func (a *App) trace(mode string, key cacheKey, chunks int, elapsed time.Duration, cached bool) {
	a.log.Debug().
		Str("mode", mode).
		Str("document", key.documentID).
		Str("config_hash", key.configHash).
		Str("content_hash", key.contentHash).
		Int("chunks", chunks).
		Dur("duration", elapsed).
		Bool("cached", cached).
		Msg("segmented document")
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
