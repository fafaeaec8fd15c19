package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
	"github.com/dockeep/dockeep/internal/core/ports/driving"
	"github.com/dockeep/dockeep/internal/fingerprint"
	"github.com/dockeep/dockeep/internal/logger"
	"github.com/dockeep/dockeep/internal/vector"
)

// Ensure DuplicateDetector implements the interface.
var _ driving.DuplicateScanner = (*DuplicateDetector)(nil)

// DetectorConfig holds the tunable thresholds of the detection pipeline.
// The defaults reproduce the shipped behaviour; they are knobs, not hidden
// constants.
type DetectorConfig struct {
	// EmbeddingDistanceMax is the tier-4 cutoff on 1-cosine title
	// distance. Lower distance is more similar.
	EmbeddingDistanceMax float64

	// EditSimilarityMin is the tier-4 cutoff on normalized edit
	// similarity between titles.
	EditSimilarityMin float64

	// PreviewNormalizeLen is how many preview characters tier 2
	// normalizes before hashing.
	PreviewNormalizeLen int

	// MinNormalizedLen discards tier-2 previews shorter than this after
	// normalization; near-empty scans cause false positives.
	MinNormalizedLen int

	// SizeBucketBytes is the tier-3 file size bucket width.
	SizeBucketBytes int64
}

// DefaultDetectorConfig returns the shipped thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		EmbeddingDistanceMax: 0.6,
		EditSimilarityMin:    0.60,
		PreviewNormalizeLen:  2000,
		MinNormalizedLen:     100,
		SizeBucketBytes:      1024,
	}
}

// DuplicateDetector partitions the library into duplicate groups with a
// four-tier pipeline: exact hash, normalized content, title+size bucket,
// and semantic/string title similarity. Each tier marks ids as processed
// so later tiers skip them; no id is ever assigned as a delete candidate
// twice.
//
// Detection is not incremental: every scan recomputes hashes and groups
// from scratch over the full record set, trading throughput for
// correctness. It must run without interleaved mutation of the record set.
type DuplicateDetector struct {
	docStore driven.DocumentStore
	library  driving.Library
	embedder driven.EmbeddingService // optional
	cfg      DetectorConfig
}

// NewDuplicateDetector creates a detector. The embedder is optional; when
// nil, tier 4 relies on edit similarity alone. The library is used by
// Clean to delete candidates.
func NewDuplicateDetector(
	docStore driven.DocumentStore,
	library driving.Library,
	embedder driven.EmbeddingService,
	cfg DetectorConfig,
) *DuplicateDetector {
	return &DuplicateDetector{
		docStore: docStore,
		library:  library,
		embedder: embedder,
		cfg:      cfg,
	}
}

// scanState accumulates results while the tiers run.
type scanState struct {
	records    []domain.DocumentRecord
	byID       map[string]*domain.DocumentRecord
	processed  map[string]bool
	candidates []domain.DocumentRecord
	highlight  map[string]struct{}
	groups     []domain.DuplicateGroup
	lines      []string
}

// Scan runs all four tiers in fixed order and returns the derived view.
func (d *DuplicateDetector) Scan(ctx context.Context) (*domain.ScanResult, error) {
	logger.Section("Duplicate Scan")

	records, err := d.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	st := &scanState{
		records:   records,
		byID:      make(map[string]*domain.DocumentRecord, len(records)),
		processed: make(map[string]bool),
		highlight: make(map[string]struct{}),
	}
	for i := range st.records {
		st.byID[st.records[i].ID] = &st.records[i]
	}

	if err := d.tierExactHash(ctx, st); err != nil {
		return nil, err
	}
	d.tierNormalizedContent(st)
	d.tierTitleSize(st)
	d.tierSimilarTitle(ctx, st)

	report := fmt.Sprintf("Scanned %d files. Found %d groups.", len(records), len(st.groups))
	if len(st.lines) > 0 {
		report += "\n" + strings.Join(st.lines, "\n")
	}

	logger.Info("Scan complete: %d groups, %d delete candidates", len(st.groups), len(st.candidates))

	return &domain.ScanResult{
		Scanned:     len(records),
		Report:      report,
		Candidates:  st.candidates,
		Highlighted: st.highlight,
		Groups:      st.groups,
	}, nil
}

// Clean re-runs the full detection and deletes every delete candidate.
// Re-running rather than reusing a prior scan keeps the deleted set
// consistent with current file state, at the cost of recomputing hashes.
func (d *DuplicateDetector) Clean(ctx context.Context) (int, error) {
	result, err := d.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan before clean: %w", err)
	}

	deleted := 0
	for _, candidate := range result.Candidates {
		if err := d.library.Delete(ctx, candidate.ID); err != nil {
			logger.Warn("Clean: delete %s failed: %v", candidate.ID, err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// tierExactHash recomputes every record's content fingerprint from its
// current stored bytes (self-healing against stale hashes from older
// fingerprint schemes), persists changed hashes, and groups by hash.
func (d *DuplicateDetector) tierExactHash(ctx context.Context, st *scanState) error {
	for i := range st.records {
		rec := &st.records[i]
		hash, err := fingerprint.File(rec.StoredPath)
		if err != nil {
			// Hash unknown, not fatal; the record just cannot
			// participate in this tier.
			logger.Warn("Fingerprint %s failed: %v", rec.StoredPath, err)
			continue
		}
		if hash != rec.Hash {
			rec.Hash = hash
			if err := d.docStore.SaveDocument(ctx, rec); err != nil {
				return fmt.Errorf("persist recomputed hash for %s: %w", rec.ID, err)
			}
		}
	}

	d.groupBy(st, domain.TierExactHash, func(rec *domain.DocumentRecord) (string, bool) {
		return rec.Hash, rec.Hash != ""
	})
	return nil
}

// tierNormalizedContent groups unprocessed records by a hash of their
// normalized text preview: first PreviewNormalizeLen characters, all
// whitespace stripped, lower-cased. Previews shorter than
// MinNormalizedLen after normalization are too short to be reliable.
func (d *DuplicateDetector) tierNormalizedContent(st *scanState) {
	d.groupBy(st, domain.TierContent, func(rec *domain.DocumentRecord) (string, bool) {
		norm := d.normalizePreview(rec.TextPreview)
		if len(norm) < d.cfg.MinNormalizedLen {
			return "", false
		}
		return fingerprint.Text(norm), true
	})
}

// tierTitleSize groups unprocessed records by exact title string and
// integer kilobyte size bucket. Catches re-saved/recompressed files that
// share an inferred title and near-identical size.
func (d *DuplicateDetector) tierTitleSize(st *scanState) {
	d.groupBy(st, domain.TierTitleSize, func(rec *domain.DocumentRecord) (string, bool) {
		if rec.Title == "" {
			return "", false
		}
		bucket := rec.FileSize / d.cfg.SizeBucketBytes
		return fmt.Sprintf("%s|%d", rec.Title, bucket), true
	})
}

// tierSimilarTitle pairs each remaining record with its best title match
// among all other records, by embedding distance or edit similarity.
// Matches are marked visited so they are never evaluated as a source
// later, which prevents symmetric double-reporting. A match that already
// keeps an earlier group may still appear here; overlapping group reports
// are intentional, only candidate assignments are exclusive.
func (d *DuplicateDetector) tierSimilarTitle(ctx context.Context, st *scanState) {
	visited := make(map[string]bool)
	titleVecs := make(map[string][]float32)

	for i := range st.records {
		source := &st.records[i]
		if st.processed[source.ID] || visited[source.ID] || source.Title == "" {
			continue
		}

		var (
			match    *domain.DocumentRecord
			bestDist = d.cfg.EmbeddingDistanceMax
			bestEdit = d.cfg.EditSimilarityMin
		)

		for j := range st.records {
			other := &st.records[j]
			if other.ID == source.ID || visited[other.ID] || other.Title == "" {
				continue
			}

			// Fast exact path.
			if strings.EqualFold(source.Title, other.Title) {
				match = other
				bestDist = 0.0
				break
			}

			dist := d.titleDistance(ctx, titleVecs, source.Title, other.Title)
			edit := fingerprint.EditSimilarity(source.Title, other.Title)

			// Embedding distance is preferred: the string branch
			// only fires when the distance branch does not.
			if dist < bestDist {
				match = other
				bestDist = dist
			} else if edit > bestEdit {
				match = other
				bestEdit = edit
			}
		}

		if match == nil {
			continue
		}

		st.candidates = append(st.candidates, *source)
		st.processed[source.ID] = true
		st.processed[match.ID] = true
		visited[source.ID] = true
		visited[match.ID] = true
		st.highlight[source.ID] = struct{}{}
		st.highlight[match.ID] = struct{}{}

		st.groups = append(st.groups, domain.DuplicateGroup{
			Tier:  domain.TierSimilarName,
			Label: match.Title,
			IDs:   []string{match.ID, source.ID},
		})
		st.lines = append(st.lines, fmt.Sprintf("- [%s] %q ~ %q",
			domain.TierSimilarName, source.Title, match.Title))
	}
}

// groupBy runs one exact-key grouping tier: unprocessed records are keyed
// by keyFn, and every key with more than one member becomes a group. The
// earliest-created member keeps; the rest are delete candidates. All
// members, keeper included, are marked processed and highlighted so the
// user can visually confirm the group.
func (d *DuplicateDetector) groupBy(
	st *scanState,
	tier domain.MatchTier,
	keyFn func(*domain.DocumentRecord) (string, bool),
) {
	members := make(map[string][]*domain.DocumentRecord)
	var order []string

	for i := range st.records {
		rec := &st.records[i]
		if st.processed[rec.ID] {
			continue
		}
		key, ok := keyFn(rec)
		if !ok {
			continue
		}
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		// Records arrive sorted by creation time, so the first
		// member of each key is the keeper.
		members[key] = append(members[key], rec)
	}

	for _, key := range order {
		group := members[key]
		if len(group) < 2 {
			continue
		}

		keeper := group[0]
		ids := make([]string, 0, len(group))
		for _, rec := range group {
			ids = append(ids, rec.ID)
			st.processed[rec.ID] = true
			st.highlight[rec.ID] = struct{}{}
		}
		for _, rec := range group[1:] {
			st.candidates = append(st.candidates, *rec)
		}

		st.groups = append(st.groups, domain.DuplicateGroup{
			Tier:  tier,
			Label: keeper.DisplayTitle(),
			IDs:   ids,
		})
		st.lines = append(st.lines, fmt.Sprintf("- [%s] %q has %d copies",
			tier, keeper.DisplayTitle(), len(group)))
	}
}

// titleDistance returns 1-cosine between the two titles' embeddings,
// caching vectors per scan. Without an embedder every distance is maximal
// so the embedding branch never fires.
func (d *DuplicateDetector) titleDistance(ctx context.Context, cache map[string][]float32, a, b string) float64 {
	if d.embedder == nil {
		return 1.0
	}

	va := d.titleVector(ctx, cache, a)
	vb := d.titleVector(ctx, cache, b)
	if va == nil || vb == nil {
		return 1.0
	}

	return 1.0 - vector.Cosine(va, vb)
}

func (d *DuplicateDetector) titleVector(ctx context.Context, cache map[string][]float32, title string) []float32 {
	if vec, ok := cache[title]; ok {
		return vec
	}

	vec, err := d.embedder.Embed(ctx, title)
	if err != nil {
		logger.Warn("Title embedding failed for %q: %v", title, err)
		vec = nil
	}
	cache[title] = vec
	return vec
}

// normalizePreview lower-cases the first PreviewNormalizeLen characters of
// the preview and strips all whitespace.
func (d *DuplicateDetector) normalizePreview(preview string) string {
	runes := []rune(preview)
	if len(runes) > d.cfg.PreviewNormalizeLen {
		runes = runes[:d.cfg.PreviewNormalizeLen]
	}

	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
