package chunker

import (
	"context"
	"iter"
)

// Pipeline segments documents with one validated Config. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	warnings []Warning
}

// NewPipeline validates cfg. Every caller, preview or generation, builds its
// pipeline here so the overlap clamp is applied the same way everywhere.
func NewPipeline(cfg Config) (*Pipeline, error) {
	effective, warnings, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: effective, warnings: warnings}, nil
}

// Config returns the effective (clamped) configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Warnings returns the adjustments made while validating the config.
func (p *Pipeline) Warnings() []Warning {
	return append([]Warning(nil), p.warnings...)
}

// Segment splits rawText into chunks. The result depends only on the inputs:
// identical arguments always produce identical chunks.
func (p *Pipeline) Segment(documentID, rawText string) []Chunk {
	var chunks []Chunk
	for c := range p.All(documentID, rawText) {
		chunks = append(chunks, c)
	}
	if chunks == nil {
		return []Chunk{}
	}
	return chunks
}

// All yields the chunks of rawText one at a time, in the same order and with
// the same content as Segment. Breaking out of the loop stops the work.
func (p *Pipeline) All(documentID, rawText string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		p.run(documentID, rawText, yield)
	}
}

// SegmentContext is Segment with cooperative cancellation between chunks.
func (p *Pipeline) SegmentContext(ctx context.Context, documentID, rawText string) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks := []Chunk{}
	var err error
	p.run(documentID, rawText, func(c Chunk) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		chunks = append(chunks, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (p *Pipeline) run(documentID, rawText string, yield func(Chunk) bool) {
	text := []rune(Normalize(rawText))
	if len(text) == 0 {
		return
	}

	nextID := 1
	numbered := func(c Chunk) bool {
		c.ID = nextID
		nextID++
		return yield(c)
	}

	if len(text) <= p.cfg.ChunkSize {
		title := ""
		if sections := SplitSections(text, p.cfg.SplitByHeaders); len(sections) > 0 {
			title = sections[0].Title
		}
		numbered(newChunk(text, 0, documentID, title))
		return
	}

	sections := SplitSections(text, p.cfg.SplitByHeaders)
	assemble(text, sections, p.cfg, documentID, numbered)
}

// Segment validates cfg and segments one document.
func Segment(documentID, rawText string, cfg Config) ([]Chunk, []Warning, error) {
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p.Segment(documentID, rawText), p.Warnings(), nil
}
