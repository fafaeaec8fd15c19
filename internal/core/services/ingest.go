package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
	"github.com/dockeep/dockeep/internal/core/ports/driving"
	"github.com/dockeep/dockeep/internal/fingerprint"
	"github.com/dockeep/dockeep/internal/logger"
)

// Ensure Processor implements the interface.
var _ driving.Ingestor = (*Processor)(nil)

// Page limits for text extraction. The primary extractor reads up to
// three pages; when it yields nothing the fallback tries the first two.
const (
	primaryMaxPages  = 3
	fallbackMaxPages = 2
)

// Processor is the sequential per-document pipeline: hash at ingestion,
// then extract, classify, index and persist one document at a time.
//
// The batch is strictly sequential even though nothing in the algorithms
// forbids parallelism; the categorisation model is a scarce, possibly
// rate-limited external resource. Cancellation is observed only at
// document boundaries, never mid-document.
type Processor struct {
	docStore   driven.DocumentStore
	byteStore  driven.ByteStore
	primary    driven.TextExtractor
	fallback   driven.TextExtractor
	classifier driven.Classifier // optional external model
	heuristic  driven.Classifier // local fallback, always present
	index      *SemanticIndex

	cancelled atomic.Bool
	running   atomic.Bool
}

// NewProcessor creates the ingestion processor. classifier may be nil;
// heuristic must not be.
func NewProcessor(
	docStore driven.DocumentStore,
	byteStore driven.ByteStore,
	primary driven.TextExtractor,
	fallback driven.TextExtractor,
	classifier driven.Classifier,
	heuristic driven.Classifier,
	index *SemanticIndex,
) *Processor {
	return &Processor{
		docStore:   docStore,
		byteStore:  byteStore,
		primary:    primary,
		fallback:   fallback,
		classifier: classifier,
		heuristic:  heuristic,
		index:      index,
	}
}

// Ingest copies the source file into library storage under an id-derived
// name, fingerprints it best-effort, and creates a Pending record.
// A fingerprint failure leaves the hash empty and does not block
// ingestion.
func (p *Processor) Ingest(ctx context.Context, sourcePath string) (*domain.DocumentRecord, error) {
	id := uuid.New().String()
	storedName := id + strings.ToLower(filepath.Ext(sourcePath))

	storedPath, err := p.byteStore.Copy(ctx, sourcePath, storedName)
	if err != nil {
		return nil, fmt.Errorf("copy into library: %w", err)
	}

	size, err := p.byteStore.Size(ctx, storedPath)
	if err != nil {
		return nil, fmt.Errorf("stat stored file: %w", err)
	}

	hash, err := fingerprint.File(storedPath)
	if err != nil {
		logger.Warn("Fingerprint %s failed, hash left unknown: %v", storedPath, err)
		hash = ""
	}

	rec := &domain.DocumentRecord{
		ID:           id,
		StoredPath:   storedPath,
		OriginalName: filepath.Base(sourcePath),
		Hash:         hash,
		FileSize:     size,
		Status:       domain.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := p.docStore.SaveDocument(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	logger.Info("Ingested %s as %s", rec.OriginalName, rec.ID)
	return rec, nil
}

// ProcessPending consumes the pending batch in ingestion order, one
// document at a time. Per-document failures mark that record Error and
// the batch continues; only persistence failures abort the operation.
// Progress is reported as (index+1)/total after each document completes,
// so it reaches 1.0 only when the batch finishes, not when cancelled.
func (p *Processor) ProcessPending(ctx context.Context, onProgress driving.ProgressFunc) error {
	if !p.running.CompareAndSwap(false, true) {
		return domain.ErrProcessingInProgress
	}
	defer p.running.Store(false)

	pending, err := p.docStore.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}

	logger.Section("Processing Batch")
	logger.Info("Processing %d pending documents", len(pending))

	for i := range pending {
		// Cancellation is checked once per document boundary.
		if p.cancelled.Load() {
			p.cancelled.Store(false)
			logger.Info("Processing cancelled, %d documents left pending", len(pending)-i)
			return nil
		}

		if err := p.processOne(ctx, &pending[i]); err != nil {
			return err
		}

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(pending)))
		}
	}

	return nil
}

// Reanalyze runs the same per-document pipeline on one existing record,
// as a single-item batch.
func (p *Processor) Reanalyze(ctx context.Context, documentID string) error {
	rec, err := p.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	return p.processOne(ctx, rec)
}

// Cancel requests that the running batch stop at the next document
// boundary. Remaining documents stay Pending for a future run.
func (p *Processor) Cancel() {
	p.cancelled.Store(true)
}

// processOne runs the per-document state machine:
// Analyzing -> extract -> classify -> index -> Done, or Error when no
// extractor yields text. Only store failures are returned; everything
// else degrades.
func (p *Processor) processOne(ctx context.Context, rec *domain.DocumentRecord) error {
	rec.Status = domain.StatusAnalyzing
	if err := p.docStore.SaveDocument(ctx, rec); err != nil {
		return fmt.Errorf("persist status for %s: %w", rec.ID, err)
	}

	pages := p.extractPages(ctx, rec)
	if joined := strings.TrimSpace(strings.Join(pages, "")); joined == "" {
		// Unreadable documents stay visible with a fallback title so
		// the user can retry via re-analysis.
		logger.Warn("No extractable text in %s (%s)", rec.OriginalName, rec.ID)
		rec.Status = domain.StatusError
		rec.Title = rec.OriginalName
		rec.Category = domain.FallbackCategory
		rec.Emoji = domain.FallbackEmoji
		if err := p.docStore.SaveDocument(ctx, rec); err != nil {
			return fmt.Errorf("persist error status for %s: %w", rec.ID, err)
		}
		return nil
	}

	rec.TextPreview = truncateRunes(strings.Join(pages, "\n"), domain.PreviewLimit)

	cls := p.classify(ctx, rec.TextPreview)
	rec.Title = cls.Title
	rec.Category = cls.Category
	rec.Emoji = cls.Emoji
	rec.Tags = capTags(cls.Tags)
	rec.Confidence = cls.Confidence

	p.indexPages(ctx, rec, pages)

	rec.Status = domain.StatusDone
	if err := p.docStore.SaveDocument(ctx, rec); err != nil {
		return fmt.Errorf("persist result for %s: %w", rec.ID, err)
	}

	logger.Debug("Processed %s: %q (%s)", rec.ID, rec.Title, rec.Category)
	return nil
}

// extractPages tries the primary extractor for up to three pages, then
// the fallback for up to two. Either may legitimately return nothing.
func (p *Processor) extractPages(ctx context.Context, rec *domain.DocumentRecord) []string {
	pages, err := p.primary.ExtractPages(ctx, rec.StoredPath, primaryMaxPages)
	if err != nil {
		logger.Warn("%s extractor failed on %s: %v", p.primary.Name(), rec.OriginalName, err)
	}
	if hasText(pages) {
		return pages
	}

	pages, err = p.fallback.ExtractPages(ctx, rec.StoredPath, fallbackMaxPages)
	if err != nil {
		logger.Warn("%s extractor failed on %s: %v", p.fallback.Name(), rec.OriginalName, err)
		return nil
	}
	return pages
}

// classify invokes the external model when configured, falling back to
// the local keyword heuristic on any failure. The heuristic never fails.
func (p *Processor) classify(ctx context.Context, preview string) *domain.Classification {
	if p.classifier != nil {
		cls, err := p.classifier.Classify(ctx, preview)
		if err == nil {
			return cls
		}
		logger.Warn("Model classification failed, using heuristic: %v", err)
	}

	cls, _ := p.heuristic.Classify(ctx, preview)
	return cls
}

// indexPages re-indexes the document's chunks. Indexing failures are
// logged and skipped; the document still completes analysis.
func (p *Processor) indexPages(ctx context.Context, rec *domain.DocumentRecord, pages []string) {
	if p.index == nil {
		return
	}

	if err := p.index.ClearDocument(ctx, rec.ID); err != nil {
		logger.Warn("Clear chunks for %s failed: %v", rec.ID, err)
		return
	}
	for pageIdx, text := range pages {
		if err := p.index.IndexPage(ctx, rec.ID, pageIdx, text); err != nil {
			logger.Warn("Index page %d of %s failed: %v", pageIdx, rec.ID, err)
		}
	}
}

func hasText(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func capTags(tags []string) []string {
	if len(tags) > 5 {
		return tags[:5]
	}
	return tags
}
