package chunker

// SplitWindow splits block into fixed-size windows that overlap by overlap
// characters. A window starts at every multiple of chunkSize-overlap below
// len(block), so the tail may be covered by several shorter windows. Offsets
// are shifted by baseOffset so they address the whole normalized document.
// The caller guarantees chunkSize > 0 and 0 <= overlap < chunkSize; Pipeline
// enforces this.
func SplitWindow(block []rune, chunkSize, overlap, baseOffset int) []Chunk {
	var chunks []Chunk
	splitWindow(block, chunkSize, overlap, baseOffset, "", "", func(c Chunk) bool {
		c.ID = len(chunks) + 1
		chunks = append(chunks, c)
		return true
	})
	return chunks
}

// splitWindow is the streaming form of SplitWindow. It returns false when
// yield asked to stop.
func splitWindow(block []rune, chunkSize, overlap, baseOffset int, source, section string, yield func(Chunk) bool) bool {
	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	for i := 0; i < len(block); i += step {
		end := min(i+chunkSize, len(block))
		if !yield(newChunk(block[i:end], baseOffset+i, source, section)) {
			return false
		}
	}
	return true
}
