package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Default configuration values.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Config holds the segmentation parameters. It is passed by value and never
// mutated after validation, so one Config can be shared by concurrent calls.
type Config struct {
	ChunkSize    int `validate:"gt=0"`  // target/maximum chunk length in characters
	ChunkOverlap int `validate:"gte=0"` // characters shared by consecutive windows

	// PreserveStructure is consumed by the prompt layer downstream and does
	// not change segmentation.
	PreserveStructure bool
	SplitByHeaders    bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		PreserveStructure: true,
		SplitByHeaders:    true,
	}
}

// Hash identifies the segmentation-relevant part of the config.
func (c Config) Hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%t|%t",
		c.ChunkSize, c.ChunkOverlap, c.PreserveStructure, c.SplitByHeaders)))
	return hex.EncodeToString(sum[:8])
}

// Chunk is a contiguous slice of a document's normalized text.
type Chunk struct {
	ID             int    `json:"id"`
	Content        string `json:"content"`
	StartPos       int    `json:"start_pos"` // rune offset into the normalized text
	EndPos         int    `json:"end_pos"`
	Size           int    `json:"size"`
	SourceDocument string `json:"source_document"`
	Section        string `json:"section,omitempty"` // title of the section the chunk starts in
	Hash           string `json:"hash"`
}

// Section is a header-delimited (or whole-document) span of normalized text.
type Section struct {
	Start  int
	End    int
	Headed bool
	Title  string
}

// Len returns the section length in runes.
func (s Section) Len() int {
	return s.End - s.Start
}

// Warning is a non-fatal adjustment made while validating a Config.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}
