package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkforge/internal/chunker"
	"chunkforge/internal/config"
	"chunkforge/internal/metrics"
	"chunkforge/internal/source"
)

// mapProvider serves documents from memory; missing ids are unavailable.
type mapProvider struct {
	docs  map[string]string
	calls atomic.Int32
}

func (m *mapProvider) Content(_ context.Context, documentID string) (string, error) {
	m.calls.Add(1)
	text, ok := m.docs[documentID]
	if !ok {
		return "", &source.ContentUnavailableError{DocumentID: documentID, Err: os.ErrNotExist}
	}
	return text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:         100,
		ChunkOverlap:      20,
		PreserveStructure: true,
		SplitByHeaders:    true,
		ChunkMethod:       chunker.MethodAuto,
		PreviewDocuments:  3,
		PreviewChunks:     2,
		PreviewOutline:    true,
		MaxConcurrency:    2,
		CacheSize:         16,
		LogLevel:          "info",
	}
}

func newTestApp(t *testing.T, cfg *config.Config, docs map[string]string) (*App, *mapProvider) {
	t.Helper()
	provider := &mapProvider{docs: docs}
	a, err := New(cfg, WithProvider(provider))
	require.NoError(t, err)
	return a, provider
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 0

	_, err := New(cfg)
	assert.ErrorIs(t, err, chunker.ErrInvalidConfig)
}

func TestNewRejectsInvalidServiceSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "zero concurrency", modify: func(c *config.Config) { c.MaxConcurrency = 0 }},
		{name: "negative preview documents", modify: func(c *config.Config) { c.PreviewDocuments = -1 }},
		{name: "zero preview chunks", modify: func(c *config.Config) { c.PreviewChunks = 0 }},
		{name: "negative cache size", modify: func(c *config.Config) { c.CacheSize = -1 }},
		{name: "unknown method", modify: func(c *config.Config) { c.ChunkMethod = "semantic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)

			a, err := New(cfg)
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}

	t.Run("bare config", func(t *testing.T) {
		_, err := New(&config.Config{ChunkSize: 100, ChunkOverlap: 10})
		assert.Error(t, err)
	})
}

func TestPreview(t *testing.T) {
	long := "# Intro\n" + strings.Repeat("word ", 100)
	docs := map[string]string{
		"a.md":  long,
		"b.txt": "short text",
		"c.md":  "# C\nbody",
		"d.md":  "never previewed",
	}
	a, provider := newTestApp(t, testConfig(), docs)

	report, err := a.Preview(context.Background(), []string{"a.md", "missing.md", "b.txt", "c.md", "d.md"})
	require.NoError(t, err)

	require.Len(t, report.Documents, 3)
	assert.Equal(t, []string{"c.md", "d.md"}, report.Skipped)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.EqualValues(t, 3, provider.calls.Load())

	first := report.Documents[0]
	require.NoError(t, first.Err)
	require.NotNil(t, first.Structure)
	require.Len(t, first.Chunks, 2)
	assert.True(t, first.Truncated)
	assert.Equal(t, 0, first.Chunks[0].Overlap)
	assert.Equal(t, 20, first.Chunks[1].Overlap)
	assert.Equal(t, "Intro", first.Chunks[0].Section)
	assert.Equal(t, 1, first.Structure.HeadingCounts[1])

	missing := report.Documents[1]
	assert.ErrorIs(t, missing.Err, source.ErrContentUnavailable)
	assert.Empty(t, missing.Chunks)

	short := report.Documents[2]
	require.Len(t, short.Chunks, 1)
	assert.False(t, short.Truncated)
	assert.False(t, short.Config.SplitByHeaders)

	m := a.Metrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(modePreview, metrics.StatusUnavailable)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ChunksTotal.WithLabelValues(modePreview)))
}

func TestPreviewWithoutOutline(t *testing.T) {
	cfg := testConfig()
	cfg.PreviewOutline = false
	a, _ := newTestApp(t, cfg, map[string]string{"a.md": "# Intro\n" + strings.Repeat("word ", 100)})

	report, err := a.Preview(context.Background(), []string{"a.md"})
	require.NoError(t, err)
	doc := report.Documents[0]
	assert.Nil(t, doc.Structure)
	assert.Len(t, doc.Chunks, 2)

	var out bytes.Buffer
	require.NoError(t, RenderPreview(&out, report))
	assert.NotContains(t, out.String(), "**Structure:**")
	assert.Contains(t, out.String(), "### Chunk 1: Intro")
}

func TestPreviewMatchesGeneration(t *testing.T) {
	text := "lead\n# One\n" + strings.Repeat("alpha ", 40) + "\n## Two\n" + strings.Repeat("beta ", 30)
	cfg := testConfig()
	cfg.PreviewChunks = 100
	a, _ := newTestApp(t, cfg, map[string]string{"doc.md": text})

	preview, err := a.Preview(context.Background(), []string{"doc.md"})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = a.Generate(context.Background(), []string{"doc.md"}, &out)
	require.NoError(t, err)
	records := decodeRecords(t, &out)

	require.Len(t, records, len(preview.Documents[0].Chunks))
	for i, rec := range records {
		assert.Equal(t, preview.Documents[0].Chunks[i].Chunk, rec.Chunk)
	}
}

func TestOverlapClampIsUniform(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 50
	cfg.ChunkOverlap = 80
	cfg.PreviewChunks = 1000
	text := strings.Repeat("x", 120)
	a, _ := newTestApp(t, cfg, map[string]string{"doc.txt": text})

	preview, err := a.Preview(context.Background(), []string{"doc.txt"})
	require.NoError(t, err)
	doc := preview.Documents[0]
	assert.Equal(t, 49, doc.Config.ChunkOverlap)
	require.Len(t, doc.Warnings, 1)

	var out bytes.Buffer
	_, err = a.Generate(context.Background(), []string{"doc.txt"}, &out)
	require.NoError(t, err)
	records := decodeRecords(t, &out)

	require.Len(t, records, len(doc.Chunks))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Metrics().ConfigWarningsTotal))
}

func TestGenerate(t *testing.T) {
	docs := map[string]string{
		"a.md":  "# A\n" + strings.Repeat("a", 150),
		"b.txt": strings.Repeat("b", 250),
		"c.md":  "   ",
	}
	a, _ := newTestApp(t, testConfig(), docs)

	var out bytes.Buffer
	report, err := a.Generate(context.Background(), []string{"a.md", "gone.md", "b.txt", "c.md"}, &out)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Documents, 4)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.ErrorIs(t, report.Documents[1].Err, source.ErrContentUnavailable)
	assert.Equal(t, 0, report.Documents[3].Chunks)

	records := decodeRecords(t, &out)
	require.Len(t, records, report.TotalChunks)

	// records keep input order and per-document ids
	var order []string
	for _, rec := range records {
		assert.Equal(t, report.RunID, rec.RunID)
		if len(order) == 0 || order[len(order)-1] != rec.Chunk.SourceDocument {
			order = append(order, rec.Chunk.SourceDocument)
		}
	}
	assert.Equal(t, []string{"a.md", "b.txt"}, order)
	assert.Equal(t, 1, records[0].Chunk.ID)
	assert.Equal(t, report.Documents[0].Chunks, records[0].TotalChunks)
}

func TestGenerateUsesCache(t *testing.T) {
	a, _ := newTestApp(t, testConfig(), map[string]string{"a.txt": strings.Repeat("z", 400)})

	var first, second bytes.Buffer
	_, err := a.Generate(context.Background(), []string{"a.txt"}, &first)
	require.NoError(t, err)
	_, err = a.Generate(context.Background(), []string{"a.txt"}, &second)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics().CacheHitsTotal))

	r1, r2 := decodeRecords(t, &first), decodeRecords(t, &second)
	require.Equal(t, len(r1), len(r2))
	for i := range r1 {
		assert.Equal(t, r1[i].Chunk, r2[i].Chunk)
		assert.NotEqual(t, r1[i].RunID, r2[i].RunID)
	}
}

func TestGenerateCancelled(t *testing.T) {
	a, _ := newTestApp(t, testConfig(), map[string]string{"a.txt": strings.Repeat("z", 400)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Generate(ctx, []string{"a.txt"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingProvider struct{}

func (failingProvider) Content(context.Context, string) (string, error) {
	return "", errors.New("storage offline")
}

func TestGenerateAbortsOnUnexpectedProviderError(t *testing.T) {
	a, err := New(testConfig(), WithProvider(failingProvider{}))
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), []string{"a.md"}, &bytes.Buffer{})
	assert.EqualError(t, err, "storage offline")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics().DocumentsTotal.WithLabelValues(modeGenerate, metrics.StatusFailed)))

	_, err = a.Preview(context.Background(), []string{"a.md"})
	assert.EqualError(t, err, "storage offline")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics().DocumentsTotal.WithLabelValues(modePreview, metrics.StatusFailed)))
}

func TestGenerateWithFileProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte("# Guide\r\n\r\n"+strings.Repeat("text ", 50)), 0644))

	cfg := testConfig()
	cfg.DataDir = dir
	a, err := New(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := a.Generate(context.Background(), []string{"guide.md", "nope.md"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Positive(t, report.TotalChunks)
}

func TestRun(t *testing.T) {
	a, _ := newTestApp(t, testConfig(), map[string]string{"a.md": "# Title\nhello"})
	var out bytes.Buffer
	a.out = &out

	err := a.Run(context.Background(), strings.NewReader("\na.md\n\nmissing.md\n"))
	require.NoError(t, err)

	rendered := out.String()
	assert.Contains(t, rendered, "## a.md")
	assert.Contains(t, rendered, "### Chunk 1: Title")
	assert.Contains(t, rendered, "## missing.md")
	assert.Contains(t, rendered, "**Error:**")
}

func TestRenderPreview(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkOverlap = 500
	cfg.PreviewChunks = 3
	a, _ := newTestApp(t, cfg, map[string]string{
		"a.md": "# Top\n## Sub\n" + strings.Repeat("y", 300),
	})
	report, err := a.Preview(context.Background(), []string{"a.md"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "preview.md")
	require.NoError(t, WritePreviewReport(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rendered := string(data)

	assert.Contains(t, rendered, "# Chunk preview")
	assert.Contains(t, rendered, "**Warning:** ChunkOverlap")
	assert.Contains(t, rendered, "headings H1=1 H2=1")
	assert.Contains(t, rendered, "overlapping the previous chunk")
	assert.Contains(t, rendered, "_More chunks not shown._")
}

func decodeRecords(t *testing.T, out *bytes.Buffer) []Record {
	t.Helper()
	var records []Record
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), fmt.Sprintf("line %q", scanner.Text()))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}
