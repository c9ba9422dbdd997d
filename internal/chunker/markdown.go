package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// Structure summarizes the markdown structure of a document.
type Structure struct {
	HeadingCounts   map[int]int // heading level -> count
	Headings        []string
	TotalParagraphs int
	TotalSize       int
}

// HasHeadings reports whether the document contains any ATX or setext heading.
func (s Structure) HasHeadings() bool {
	return len(s.Headings) > 0
}

// Outline parses normalized text with goldmark and reports its structure.
// It is informational: section boundaries come from SplitSections.
func Outline(content string) Structure {
	source := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(source))

	structure := Structure{
		HeadingCounts: make(map[int]int),
		TotalSize:     len([]rune(content)),
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			structure.HeadingCounts[node.Level]++
			structure.Headings = append(structure.Headings, extractText(node, source))
		case *ast.Paragraph:
			structure.TotalParagraphs++
		}
		return ast.WalkContinue, nil
	})

	return structure
}

// headingTitle returns the plain text of a header line, with inline markup
// such as emphasis or links removed.
func headingTitle(line string) string {
	source := []byte(line)
	doc := markdown.Parser().Parse(text.NewReader(source))

	if heading, ok := doc.FirstChild().(*ast.Heading); ok {
		if title := extractText(heading, source); title != "" {
			return title
		}
	}
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}

// extractText collects the text of node and all of its inline descendants.
func extractText(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
