package chunker

// separatorLen is the length of the blank line ("\n\n") that joins two merged
// sections. It is reserved in the merge budget.
const separatorLen = 2

// Assemble greedily merges consecutive small sections of text toward
// cfg.ChunkSize and windows sections that are too large on their own. The
// merge is single-pass with no backtracking: it keeps header sections whole
// when they fit rather than minimizing the chunk count.
func Assemble(text []rune, sections []Section, cfg Config) []Chunk {
	var chunks []Chunk
	assemble(text, sections, cfg, "", func(c Chunk) bool {
		c.ID = len(chunks) + 1
		chunks = append(chunks, c)
		return true
	})
	return chunks
}

func assemble(text []rune, sections []Section, cfg Config, source string, yield func(Chunk) bool) bool {
	var buf Section
	buffered := false

	flush := func() bool {
		if !buffered {
			return true
		}
		buffered = false
		// a lone section larger than the budget can sit in the buffer when it
		// comes first or last
		if buf.Len() > cfg.ChunkSize {
			return splitWindow(text[buf.Start:buf.End], cfg.ChunkSize, cfg.ChunkOverlap, buf.Start, source, buf.Title, yield)
		}
		return yield(newChunk(text[buf.Start:buf.End], buf.Start, source, buf.Title))
	}

	for _, sec := range sections {
		switch {
		case !buffered:
			buf, buffered = sec, true
		case buf.Len()+separatorLen+sec.Len() <= cfg.ChunkSize:
			buf.End = sec.End
		default:
			if !flush() {
				return false
			}
			if sec.Len() > cfg.ChunkSize {
				if !splitWindow(text[sec.Start:sec.End], cfg.ChunkSize, cfg.ChunkOverlap, sec.Start, source, sec.Title, yield) {
					return false
				}
				continue
			}
			buf, buffered = sec, true
		}
	}

	return flush()
}
