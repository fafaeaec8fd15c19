package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedder implements driven.EmbeddingService with canned vectors.
// Unknown texts fall back to defaultVec.
type mockEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	embedErr   error
	calls      int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.defaultVec, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = m.defaultVec
		}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Close() error { return nil }

// mockByteStore implements driven.ByteStore over a plain directory,
// without the collision handling of the real adapter.
type mockByteStore struct {
	dir       string
	copyErr   error
	moveErr   error
	deleteErr error
}

func (m *mockByteStore) Copy(_ context.Context, sourcePath, storedName string) (string, error) {
	if m.copyErr != nil {
		return "", m.copyErr
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(m.dir, storedName)
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", err
	}
	return dest, nil
}

func (m *mockByteStore) Move(_ context.Context, storedPath, newName string) (string, error) {
	if m.moveErr != nil {
		return "", m.moveErr
	}
	dest := filepath.Join(m.dir, newName)
	if err := os.Rename(storedPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (m *mockByteStore) Delete(_ context.Context, storedPath string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return os.Remove(storedPath)
}

func (m *mockByteStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(m.dir, e.Name()))
		}
	}
	return paths, nil
}

func (m *mockByteStore) Size(_ context.Context, storedPath string) (int64, error) {
	info, err := os.Stat(storedPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// mockExtractor implements driven.TextExtractor by reading the stored
// file: one page holding the full content. Content starting with
// "unreadable" yields no pages, mimicking a scan with no text layer.
type mockExtractor struct {
	name string
	err  error
	mute bool // yield no pages regardless of content
}

func (m *mockExtractor) Name() string { return m.name }

func (m *mockExtractor) ExtractPages(_ context.Context, storedPath string, _ int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.mute {
		return nil, nil
	}
	data, err := os.ReadFile(storedPath)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(string(data), "unreadable") {
		return nil, nil
	}
	return []string{string(data)}, nil
}

// mockClassifier implements driven.Classifier.
type mockClassifier struct {
	cls   *domain.Classification
	err   error
	calls int
}

func (m *mockClassifier) Classify(_ context.Context, preview string) (*domain.Classification, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.cls != nil {
		return m.cls, nil
	}
	return &domain.Classification{
		Title:      strings.TrimSpace(strings.SplitN(preview, "\n", 2)[0]),
		Category:   domain.FallbackCategory,
		Emoji:      domain.FallbackEmoji,
		Confidence: 0.5,
	}, nil
}

// writeSource writes a source file for ingestion tests.
func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// recordAt builds a minimal record with a distinct creation time.
func recordAt(id, title string, minute int) domain.DocumentRecord {
	return domain.DocumentRecord{
		ID:        id,
		Title:     title,
		Status:    domain.StatusDone,
		CreatedAt: time.Date(2026, 8, 1, 10, minute, 0, 0, time.UTC),
	}
}
