package chunker

import "regexp"

var headerPattern = regexp.MustCompile(`^#{1,6}\s`)

// IsHeaderLine reports whether line (without its trailing newline) opens a
// markdown ATX header section.
func IsHeaderLine(line string) bool {
	return len(line) > 1 && line[0] == '#' && headerPattern.MatchString(line)
}

// SplitSections partitions normalized text into header-delimited sections.
// Sections are contiguous: each one ends where the next begins, so together
// they cover the whole text. Without header splitting, or when no header line
// exists, the result is a single section spanning the text.
func SplitSections(text []rune, splitByHeaders bool) []Section {
	whole := []Section{{Start: 0, End: len(text)}}
	if !splitByHeaders || len(text) == 0 {
		return whole
	}

	var sections []Section
	current := Section{Start: 0}

	lineStart := 0
	for lineStart < len(text) {
		lineEnd := lineStart
		for lineEnd < len(text) && text[lineEnd] != '\n' {
			lineEnd++
		}

		line := string(text[lineStart:lineEnd])
		if IsHeaderLine(line) {
			// text before the first header becomes an unheadered section
			if lineStart > current.Start {
				current.End = lineStart
				sections = append(sections, current)
			}
			current = Section{Start: lineStart, Headed: true, Title: headingTitle(line)}
		}

		lineStart = lineEnd + 1
	}

	if len(sections) == 0 && !current.Headed {
		return whole
	}

	current.End = len(text)
	return append(sections, current)
}
