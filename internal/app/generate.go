package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chunkforge/internal/chunker"
	"chunkforge/internal/metrics"
	"chunkforge/internal/source"
)

// Record is one generation task: a chunk handed to the generation stage.
type Record struct {
	RunID             string        `json:"run_id"`
	ConfigHash        string        `json:"config_hash"`
	PreserveStructure bool          `json:"preserve_structure"`
	TotalChunks       int           `json:"total_chunks"`
	Chunk             chunker.Chunk `json:"chunk"`
}

// DocumentResult is the outcome for one document of a generation run.
type DocumentResult struct {
	DocumentID string
	Chunks     int
	Err        error

	chunks []chunker.Chunk
	cfg    chunker.Config
}

// GenerationReport summarizes a generation run.
type GenerationReport struct {
	RunID        string
	Documents    []DocumentResult
	TotalChunks  int
	SuccessCount int
	ErrorCount   int
	Duration     time.Duration
}

// Generate segments every document and writes one JSON line per chunk to w,
// in input order. Documents are segmented concurrently. A document whose
// content cannot be read is recorded and skipped; the rest of the batch
// continues.
func (a *App) Generate(ctx context.Context, documentIDs []string, w io.Writer) (*GenerationReport, error) {
	start := time.Now()
	report := &GenerationReport{
		RunID:     uuid.NewString(),
		Documents: make([]DocumentResult, len(documentIDs)),
	}
	log := a.log.With().Str("run_id", report.RunID).Logger()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrency)

	for i, id := range documentIDs {
		report.Documents[i].DocumentID = id
		g.Go(func() error {
			res := &report.Documents[i]

			p, err := a.pipelineFor(id)
			if err != nil {
				a.metrics.DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusFailed).Inc()
				return fmt.Errorf("%s: %w", id, err)
			}
			res.cfg = p.Config()

			text, err := a.provider.Content(gctx, id)
			if err != nil {
				if !errors.Is(err, source.ErrContentUnavailable) {
					a.metrics.DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusFailed).Inc()
					return err
				}
				a.metrics.DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusUnavailable).Inc()
				log.Error().Err(err).Str("document", id).Msg("skipping document")
				res.Err = err
				return nil
			}

			chunks, err := a.segment(gctx, modeGenerate, p, id, text)
			if err != nil {
				a.metrics.DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusFailed).Inc()
				return err
			}
			res.chunks = chunks
			res.Chunks = len(chunks)
			a.metrics.DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusOK).Inc()
			a.metrics.ChunksTotal.WithLabelValues(modeGenerate).Add(float64(len(chunks)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	enc := json.NewEncoder(w)
	for i := range report.Documents {
		res := &report.Documents[i]
		if res.Err != nil {
			report.ErrorCount++
			continue
		}
		report.SuccessCount++
		report.TotalChunks += res.Chunks

		configHash := res.cfg.Hash()
		for _, c := range res.chunks {
			rec := Record{
				RunID:             report.RunID,
				ConfigHash:        configHash,
				PreserveStructure: res.cfg.PreserveStructure,
				TotalChunks:       res.Chunks,
				Chunk:             c,
			}
			if err := enc.Encode(rec); err != nil {
				return nil, fmt.Errorf("failed to write record: %w", err)
			}
		}
		res.chunks = nil
	}

	report.Duration = time.Since(start)
	log.Info().
		Int("documents", len(documentIDs)).
		Int("chunks", report.TotalChunks).
		Int("errors", report.ErrorCount).
		Dur("duration", report.Duration).
		Msg("generation run finished")

	return report, nil
}
