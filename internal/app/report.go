package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// RenderPreview writes the preview as markdown.
func RenderPreview(w io.Writer, report *PreviewReport) error {
	var buf strings.Builder

	buf.WriteString("# Chunk preview\n\n")
	buf.WriteString(fmt.Sprintf("**Created:** %s\n\n", report.CreatedAt.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("- Documents previewed: %d\n", len(report.Documents)))
	buf.WriteString(fmt.Sprintf("- Errors: %d\n", report.ErrorCount))
	buf.WriteString(fmt.Sprintf("- Chunks per document: up to %d\n", report.ChunkLimit))
	if len(report.Skipped) > 0 {
		buf.WriteString(fmt.Sprintf("- Not previewed: %s\n", strings.Join(report.Skipped, ", ")))
	}
	buf.WriteString("\n")

	for _, doc := range report.Documents {
		buf.WriteString(fmt.Sprintf("## %s\n\n", doc.DocumentID))

		if doc.Err != nil {
			buf.WriteString(fmt.Sprintf("**Error:** %v\n\n", doc.Err))
			continue
		}

		cfg := doc.Config
		buf.WriteString(fmt.Sprintf("**Config:** size %d, overlap %d, split by headers %t (%s)\n\n",
			cfg.ChunkSize, cfg.ChunkOverlap, cfg.SplitByHeaders, cfg.Hash()))
		for _, w := range doc.Warnings {
			buf.WriteString(fmt.Sprintf("**Warning:** %s\n\n", w))
		}
		if s := doc.Structure; s != nil {
			buf.WriteString(fmt.Sprintf("**Structure:** %d characters, %d paragraphs, headings %s\n\n",
				s.TotalSize, s.TotalParagraphs, formatHeadingCounts(s.HeadingCounts)))
		}

		for _, c := range doc.Chunks {
			title := c.Section
			if title == "" {
				title = "(no section)"
			}
			buf.WriteString(fmt.Sprintf("### Chunk %d: %s\n\n", c.ID, title))
			buf.WriteString(fmt.Sprintf("Range [%d, %d), %d characters", c.StartPos, c.EndPos, c.Size))
			if c.Overlap > 0 {
				buf.WriteString(fmt.Sprintf(", %d overlapping the previous chunk", c.Overlap))
			}
			buf.WriteString("\n\n```\n")
			buf.WriteString(c.Content)
			buf.WriteString("\n```\n\n")
		}
		if doc.Truncated {
			buf.WriteString("_More chunks not shown._\n\n")
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// WritePreviewReport saves the rendered preview to outputPath.
func WritePreviewReport(report *PreviewReport, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := RenderPreview(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatHeadingCounts(counts map[int]int) string {
	if len(counts) == 0 {
		return "none"
	}
	levels := make([]int, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = fmt.Sprintf("H%d=%d", level, counts[level])
	}
	return strings.Join(parts, " ")
}
