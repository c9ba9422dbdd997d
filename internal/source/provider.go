// Package source resolves document identifiers to raw text.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Provider returns the raw UTF-8 text of a document.
type Provider interface {
	Content(ctx context.Context, documentID string) (string, error)
}

// FileProvider reads documents from the local filesystem. Document ids are
// file paths, resolved against Root when relative.
type FileProvider struct {
	Root string
}

// NewFileProvider creates a provider rooted at root ("" means the working
// directory).
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{Root: root}
}

// Supported reports whether the file extension can be read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt", ".text", ".pdf":
		return true
	}
	return false
}

func (p *FileProvider) Content(ctx context.Context, documentID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := p.resolve(documentID)
	info, err := os.Stat(path)
	if err != nil {
		return "", unavailable(documentID, err)
	}
	if info.IsDir() {
		return "", unavailable(documentID, errors.New("is a directory"))
	}
	if !Supported(path) {
		return "", unavailable(documentID, fmt.Errorf("unsupported format %q", filepath.Ext(path)))
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := readPDF(path)
		if err != nil {
			return "", unavailable(documentID, err)
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", unavailable(documentID, err)
	}
	if !utf8.Valid(data) {
		return "", unavailable(documentID, errors.New("not valid UTF-8"))
	}
	return string(data), nil
}

func (p *FileProvider) resolve(documentID string) string {
	if p.Root == "" || filepath.IsAbs(documentID) {
		return documentID
	}
	return filepath.Join(p.Root, documentID)
}

// readPDF extracts the plain text of every page.
func readPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
