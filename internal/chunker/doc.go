// Package chunker splits documents into bounded-size, offset-addressed chunks.
//
// Segmentation runs in four steps:
//
//   - Normalize canonicalizes line endings and blank-line runs.
//   - SplitSections optionally cuts the text at markdown ATX headers.
//   - Assemble greedily merges small sections up to the chunk size.
//   - SplitWindow cuts anything still too large into overlapping windows.
//
// A Pipeline ties the steps together:
//
//	p, err := chunker.NewPipeline(chunker.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	for c := range p.All("guide.md", text) {
//	    fmt.Printf("%d [%d,%d) %s\n", c.ID, c.StartPos, c.EndPos, c.Section)
//	}
//
// Offsets and sizes count runes of the normalized text, so
// Content == string([]rune(Normalize(raw))[StartPos:EndPos]) for every chunk.
// The package performs no I/O and keeps no state between calls.
package chunker
