// Package pipeline runs a document through text extraction, masking and
// structured extraction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/extraction"
	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/google/uuid"
)

// Options controls a single run.
type Options struct {
	Password string
	// MaskBeforeExtract feeds masked text to the extractors instead of the original.
	MaskBeforeExtract bool
	Validate          bool
}

// Report is the outcome of processing one document.
type Report struct {
	ProcessedAt time.Time               `json:"processed_at"`
	Masking     *privacy.Result         `json:"masking,omitempty"`
	Result      *model.ExtractionResult `json:"extraction"`
	Info        pdftext.Info            `json:"info"`
	ID          string                  `json:"id"`
	SourceFile  string                  `json:"source_file,omitempty"`
	Pages       int                     `json:"pages"`
	TextLength  int                     `json:"text_length"`
	Encrypted   bool                    `json:"is_encrypted"`
}

// Processor wires the stages together. It is safe for concurrent use as long
// as its collaborators are.
type Processor struct {
	documents *pdftext.Extractor
	masker    *privacy.Masker
	manager   *extraction.Manager
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// NewProcessor creates a processor. masker may be nil to skip masking.
func NewProcessor(documents *pdftext.Extractor, masker *privacy.Masker, manager *extraction.Manager, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if documents == nil {
		documents = pdftext.NewExtractor(nil, logger)
	}
	return &Processor{
		documents: documents,
		masker:    masker,
		manager:   manager,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ProcessFile reads path and processes its text.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) (*Report, error) {
	doc, err := p.documents.ExtractFile(path, opts.Password)
	if err != nil {
		return nil, err
	}

	report, err := p.ProcessText(ctx, doc.Text, model.SourceMetadata{
		SourceFile: doc.SourceFile,
		TotalPages: doc.TotalPages,
	}, opts)
	if err != nil {
		return nil, err
	}
	report.Info = doc.Info
	report.Encrypted = doc.Encrypted
	return report, nil
}

// ProcessText masks and extracts text that has already been read.
func (p *Processor) ProcessText(ctx context.Context, text string, meta model.SourceMetadata, opts Options) (*Report, error) {
	id := p.newID()
	logger := p.logger.With("run_id", id)
	ctx = common.WithLogger(ctx, logger)

	report := &Report{
		ID:          id,
		ProcessedAt: p.now(),
		SourceFile:  meta.SourceFile,
		Pages:       meta.TotalPages,
		TextLength:  len([]rune(text)),
	}

	input := text
	if p.masker != nil {
		masked := p.masker.ForContext(text).Mask(text)
		report.Masking = &masked
		logger.Info("masked sensitive data", "count", masked.Count, "by_type", masked.CountByType())
		if opts.MaskBeforeExtract {
			input = masked.Masked
		}
	}

	result, err := p.manager.Extract(ctx, input, meta, opts.Validate)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	result.ID = id
	report.Result = result

	logger.Info("document processed",
		"success", result.Success,
		"method", result.Method,
		"extractor", result.Extractor,
		"errors", len(result.Errors))

	return report, nil
}
