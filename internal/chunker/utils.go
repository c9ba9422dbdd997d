package chunker

import (
	"crypto/sha256"
	"fmt"
)

// newChunk builds the chunk for span, which starts at offset start of the
// normalized text. Ids are assigned later by the pipeline.
func newChunk(span []rune, start int, source, section string) Chunk {
	content := string(span)
	hash := sha256.Sum256([]byte(content + source))

	return Chunk{
		Content:        content,
		StartPos:       start,
		EndPos:         start + len(span),
		Size:           len(span),
		SourceDocument: source,
		Section:        section,
		Hash:           fmt.Sprintf("%x", hash[:8]),
	}
}

// OverlapWith returns how many characters c shares with the chunk before it.
func (c Chunk) OverlapWith(prev Chunk) int {
	if prev.SourceDocument != c.SourceDocument || c.StartPos >= prev.EndPos {
		return 0
	}
	end := min(prev.EndPos, c.EndPos)
	return end - c.StartPos
}
