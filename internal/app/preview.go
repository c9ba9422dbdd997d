package app

import (
	"context"
	"errors"
	"time"

	"chunkforge/internal/chunker"
	"chunkforge/internal/metrics"
	"chunkforge/internal/source"
)

// PreviewChunk is a chunk with the size of its overlap with the chunk before.
type PreviewChunk struct {
	chunker.Chunk
	Overlap int
}

// PreviewDocument is the preview of one document.
type PreviewDocument struct {
	DocumentID string
	Config     chunker.Config
	Warnings   []chunker.Warning
	Structure  *chunker.Structure // nil when outlines are disabled
	Chunks     []PreviewChunk
	Truncated  bool // more chunks exist than were materialized
	Err        error
}

// PreviewReport is the result of a preview session.
type PreviewReport struct {
	Documents    []PreviewDocument
	Skipped      []string // documents past the session limit
	ChunkLimit   int
	CreatedAt    time.Time
	SuccessCount int
	ErrorCount   int
}

// Preview materializes only the first PreviewChunks chunks of the first
// PreviewDocuments documents. Chunks are pulled lazily, so large documents
// are never fully segmented. A document whose content is unavailable is
// recorded in the report and does not stop the session.
func (a *App) Preview(ctx context.Context, documentIDs []string) (*PreviewReport, error) {
	report := &PreviewReport{
		ChunkLimit: a.cfg.PreviewChunks,
		CreatedAt:  time.Now(),
	}

	limit := min(len(documentIDs), a.cfg.PreviewDocuments)
	report.Skipped = append(report.Skipped, documentIDs[limit:]...)

	for _, id := range documentIDs[:limit] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := a.previewDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.Err != nil {
			report.ErrorCount++
		} else {
			report.SuccessCount++
		}
		report.Documents = append(report.Documents, doc)
	}

	return report, nil
}

func (a *App) previewDocument(ctx context.Context, documentID string) (PreviewDocument, error) {
	doc := PreviewDocument{DocumentID: documentID}

	p, err := a.pipelineFor(documentID)
	if err != nil {
		a.metrics.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusFailed).Inc()
		return doc, err
	}
	doc.Config = p.Config()
	doc.Warnings = p.Warnings()

	text, err := a.provider.Content(ctx, documentID)
	if err != nil {
		if !errors.Is(err, source.ErrContentUnavailable) {
			a.metrics.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusFailed).Inc()
			return doc, err
		}
		a.metrics.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusUnavailable).Inc()
		a.log.Error().Err(err).Str("document", documentID).Msg("skipping document")
		doc.Err = err
		return doc, nil
	}

	start := time.Now()
	var prev chunker.Chunk
	for c := range p.All(documentID, text) {
		if len(doc.Chunks) == a.cfg.PreviewChunks {
			doc.Truncated = true
			break
		}
		overlap := 0
		if len(doc.Chunks) > 0 {
			overlap = c.OverlapWith(prev)
		}
		doc.Chunks = append(doc.Chunks, PreviewChunk{Chunk: c, Overlap: overlap})
		prev = c
	}
	a.metrics.SegmentDuration.WithLabelValues(modePreview).Observe(time.Since(start).Seconds())

	if a.cfg.PreviewOutline {
		structure := chunker.Outline(chunker.Normalize(text))
		doc.Structure = &structure
	}

	a.metrics.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusOK).Inc()
	a.metrics.ChunksTotal.WithLabelValues(modePreview).Add(float64(len(doc.Chunks)))

	a.log.Info().
		Str("document", documentID).
		Str("config_hash", doc.Config.Hash()).
		Int("chunks", len(doc.Chunks)).
		Bool("truncated", doc.Truncated).
		Msg("previewed document")

	return doc, nil
}
