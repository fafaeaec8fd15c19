package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockeep/dockeep/internal/adapters/driven/storage/memory"
	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// newDetectorFixture wires a detector over a memory store with a real
// library service, so Clean exercises actual deletion.
func newDetectorFixture(t *testing.T, embedder *mockEmbedder) (*DuplicateDetector, *memory.DocumentStore, string) {
	t.Helper()
	store := memory.NewDocumentStore()
	dir := t.TempDir()
	library := NewLibraryService(store, &mockByteStore{dir: dir})

	// A nil *mockEmbedder must stay a nil interface.
	var emb driven.EmbeddingService
	if embedder != nil {
		emb = embedder
	}

	detector := NewDuplicateDetector(store, library, emb, DefaultDetectorConfig())
	return detector, store, dir
}

func saveAll(t *testing.T, store *memory.DocumentStore, records ...domain.DocumentRecord) {
	t.Helper()
	for i := range records {
		require.NoError(t, store.SaveDocument(context.Background(), &records[i]))
	}
}

func TestScanExactHashTier(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)
	content := strings.Repeat("identical document content\n", 50)

	recA := recordAt("doc-a", "Original", 0)
	recA.StoredPath = writeSource(t, dir, "a.txt", content)
	recB := recordAt("doc-b", "Copy 1", 1)
	recB.StoredPath = writeSource(t, dir, "b.txt", content)
	recC := recordAt("doc-c", "Copy 2", 2)
	recC.StoredPath = writeSource(t, dir, "c.txt", content)
	recD := recordAt("doc-d", "Unrelated", 3)
	recD.StoredPath = writeSource(t, dir, "d.txt", "completely different bytes")

	saveAll(t, store, recA, recB, recC, recD)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Scanned)
	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, domain.TierExactHash, group.Tier)
	assert.Equal(t, []string{"doc-a", "doc-b", "doc-c"}, group.IDs, "earliest record keeps")
	assert.Equal(t, "Original", group.Label)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "doc-b", result.Candidates[0].ID)
	assert.Equal(t, "doc-c", result.Candidates[1].ID)

	// All three members highlighted, the unrelated record untouched.
	assert.Contains(t, result.Highlighted, "doc-a")
	assert.Contains(t, result.Highlighted, "doc-b")
	assert.Contains(t, result.Highlighted, "doc-c")
	assert.NotContains(t, result.Highlighted, "doc-d")
}

func TestScanPersistsRecomputedHashes(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)

	rec := recordAt("doc-a", "Stale", 0)
	rec.Hash = "stale-hash-from-an-older-scheme"
	rec.StoredPath = writeSource(t, dir, "a.txt", "current bytes")
	saveAll(t, store, rec)

	_, err := detector.Scan(context.Background())
	require.NoError(t, err)

	got, err := store.GetDocument(context.Background(), "doc-a")
	require.NoError(t, err)
	assert.NotEqual(t, "stale-hash-from-an-older-scheme", got.Hash)
	assert.Len(t, got.Hash, 64)
}

func TestScanMissingFileNotFatal(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)

	gone := recordAt("doc-gone", "Vanished", 0)
	gone.StoredPath = dir + "/missing.pdf"
	ok := recordAt("doc-ok", "Present", 1)
	ok.StoredPath = writeSource(t, dir, "ok.txt", "some bytes")
	saveAll(t, store, gone, ok)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Empty(t, result.Groups)
}

func TestScanNormalizedContentTier(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)

	// Same text modulo whitespace and case; long enough to be reliable.
	base := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	shuffled := strings.ToUpper(strings.ReplaceAll(base, " ", "\n\t "))

	recA := recordAt("doc-a", "First Scan", 0)
	recA.StoredPath = writeSource(t, dir, "a.txt", "file bytes one")
	recA.TextPreview = base
	recB := recordAt("doc-b", "Second Scan", 1)
	recB.StoredPath = writeSource(t, dir, "b.txt", "file bytes two, different")
	recB.TextPreview = shuffled
	saveAll(t, store, recA, recB)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, domain.TierContent, result.Groups[0].Tier)
	assert.Equal(t, []string{"doc-a", "doc-b"}, result.Groups[0].IDs)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "doc-b", result.Candidates[0].ID)
}

func TestScanShortPreviewsNotGrouped(t *testing.T) {
	detector, store, _ := newDetectorFixture(t, nil)

	recA := recordAt("doc-a", "Electricity Invoice", 0)
	recA.TextPreview = "short text"
	recB := recordAt("doc-b", "Passport Scan 2024", 1)
	recB.TextPreview = "short   TEXT"
	saveAll(t, store, recA, recB)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Groups, "previews below the minimum length are ignored")
}

func TestScanTitleSizeTier(t *testing.T) {
	detector, store, _ := newDetectorFixture(t, nil)

	recA := recordAt("doc-a", "Tax Statement", 0)
	recA.FileSize = 2048
	recB := recordAt("doc-b", "Tax Statement", 1)
	recB.FileSize = 2900 // same 1 KiB bucket as 2048
	recC := recordAt("doc-c", "Tax Statement", 2)
	recC.FileSize = 9000 // different bucket
	saveAll(t, store, recA, recB, recC)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	// doc-a and doc-b pair on title+bucket. doc-c remains unprocessed and
	// then pairs with one of them by identical title in tier 4; candidate
	// assignments stay disjoint regardless.
	require.NotEmpty(t, result.Groups)
	assert.Equal(t, domain.TierTitleSize, result.Groups[0].Tier)
	assert.Equal(t, []string{"doc-a", "doc-b"}, result.Groups[0].IDs)

	seen := make(map[string]bool)
	for _, c := range result.Candidates {
		assert.False(t, seen[c.ID], "no record is a delete candidate twice")
		seen[c.ID] = true
	}
}

func TestScanSimilarTitleEditDistance(t *testing.T) {
	detector, store, _ := newDetectorFixture(t, nil)

	recA := recordAt("doc-a", "Quarterly Report 2024", 0)
	recB := recordAt("doc-b", "Quarterly Report 2023", 1)
	recC := recordAt("doc-c", "Grocery List", 2)
	saveAll(t, store, recA, recB, recC)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, domain.TierSimilarName, group.Tier)
	// The pair is [match, source]: the earliest unmatched record is the
	// source and becomes the delete candidate.
	assert.Equal(t, []string{"doc-b", "doc-a"}, group.IDs)
	assert.Equal(t, "Quarterly Report 2023", group.Label)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "doc-a", result.Candidates[0].ID)

	assert.NotContains(t, result.Highlighted, "doc-c")
}

func TestScanSimilarTitleCaseInsensitiveShortCircuit(t *testing.T) {
	detector, store, _ := newDetectorFixture(t, nil)

	recA := recordAt("doc-a", "ANNUAL REVIEW", 0)
	recA.FileSize = 1000
	recB := recordAt("doc-b", "annual review", 1)
	recB.FileSize = 50000 // different bucket, so tier 3 cannot catch it
	saveAll(t, store, recA, recB)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, domain.TierSimilarName, result.Groups[0].Tier)
	assert.Equal(t, []string{"doc-b", "doc-a"}, result.Groups[0].IDs)
}

func TestScanSimilarTitleEmbedding(t *testing.T) {
	embedder := &mockEmbedder{
		vectors: map[string][]float32{
			"Household Cats":   {1, 0, 0},
			"Domestic Felines": {0.95, 0.05, 0},
			"Welding Handbook": {0, 0, 1},
		},
	}
	detector, store, _ := newDetectorFixture(t, embedder)

	recA := recordAt("doc-a", "Household Cats", 0)
	recB := recordAt("doc-b", "Domestic Felines", 1)
	recC := recordAt("doc-c", "Welding Handbook", 2)
	saveAll(t, store, recA, recB, recC)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	// The two titles share almost no characters but embed close together.
	require.Len(t, result.Groups, 1)
	assert.Equal(t, domain.TierSimilarName, result.Groups[0].Tier)
	assert.Equal(t, []string{"doc-b", "doc-a"}, result.Groups[0].IDs)
	assert.NotContains(t, result.Highlighted, "doc-c")
}

func TestScanReportFormat(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)
	content := "shared bytes for the report test"

	recA := recordAt("doc-a", "Lease Agreement", 0)
	recA.StoredPath = writeSource(t, dir, "a.txt", content)
	recB := recordAt("doc-b", "Lease Agreement Copy", 1)
	recB.StoredPath = writeSource(t, dir, "b.txt", content)
	saveAll(t, store, recA, recB)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)

	lines := strings.Split(result.Report, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "Scanned 2 files. Found 1 groups.", lines[0])
	assert.Equal(t, fmt.Sprintf("- [%s] %q has 2 copies", domain.TierExactHash, "Lease Agreement"), lines[1])
}

func TestScanEmptyLibrary(t *testing.T) {
	detector, _, _ := newDetectorFixture(t, nil)

	result, err := detector.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Equal(t, "Scanned 0 files. Found 0 groups.", result.Report)
	assert.Empty(t, result.Candidates)
}

func TestCleanDeletesCandidates(t *testing.T) {
	detector, store, dir := newDetectorFixture(t, nil)
	content := strings.Repeat("same content ", 100)

	recA := recordAt("doc-a", "Keeper", 0)
	recA.StoredPath = writeSource(t, dir, "a.txt", content)
	recB := recordAt("doc-b", "Dupe 1", 1)
	recB.StoredPath = writeSource(t, dir, "b.txt", content)
	recC := recordAt("doc-c", "Dupe 2", 2)
	recC.StoredPath = writeSource(t, dir, "c.txt", content)
	saveAll(t, store, recA, recB, recC)

	deleted, err := detector.Clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "doc-a", remaining[0].ID, "the earliest copy survives")

	// A second clean finds nothing.
	deleted, err = detector.Clean(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
