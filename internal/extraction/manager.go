// Package extraction selects a field extractor for a document, validates what it
// produced and escalates to an AI analyzer when the rule-based path falls short.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/extractor"
	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/Veraticus/ledgerguard/internal/schema"
)

// Analyzer performs AI-assisted extraction and returns the raw model output.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, text string, docType model.DocumentType) (string, error)
}

// SelectionPolicy decides the order in which matching extractors are tried.
type SelectionPolicy int

const (
	// FirstMatch tries matching extractors in registration order.
	FirstMatch SelectionPolicy = iota
	// BestConfidence tries the most confident extractor first.
	BestConfidence
)

// String returns the configuration name of the policy.
func (p SelectionPolicy) String() string {
	switch p {
	case FirstMatch:
		return "first_match"
	case BestConfidence:
		return "best_confidence"
	default:
		return fmt.Sprintf("SelectionPolicy(%d)", int(p))
	}
}

// ParseSelectionPolicy maps a configuration value to a policy. Empty means FirstMatch.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_match", "first":
		return FirstMatch, nil
	case "best_confidence", "best":
		return BestConfidence, nil
	default:
		return FirstMatch, fmt.Errorf("%w: unknown selection policy %q", common.ErrInvalidConfig, s)
	}
}

// Options configures a Manager.
type Options struct {
	// Masker, when set, masks text before it is sent to the analyzer.
	Masker           *privacy.Masker
	Selection        SelectionPolicy
	EnableAIFallback bool
}

// ExtractorInfo describes a registered extractor.
type ExtractorInfo struct {
	Name         string             `json:"name"`
	DocumentType model.DocumentType `json:"document_type"`
	SchemaID     string             `json:"schema_id,omitempty"`
}

// Manager coordinates extractors, the validator and the optional analyzer.
// It holds no per-call state and is safe for concurrent use.
type Manager struct {
	validator  *schema.Validator
	analyzer   Analyzer
	logger     *slog.Logger
	extractors []extractor.Extractor
	opts       Options
}

// NewManager creates a manager. Configuration problems fail here rather than
// on the first document.
func NewManager(extractors []extractor.Extractor, validator *schema.Validator, analyzer Analyzer, opts Options, logger *slog.Logger) (*Manager, error) {
	if opts.EnableAIFallback && analyzer == nil {
		return nil, fmt.Errorf("%w: AI fallback is enabled but no analyzer is configured", common.ErrAnalyzerRequired)
	}
	if opts.Selection != FirstMatch && opts.Selection != BestConfidence {
		return nil, fmt.Errorf("%w: unknown selection policy %d", common.ErrInvalidConfig, int(opts.Selection))
	}
	if extractors == nil {
		extractors = extractor.Defaults()
	}
	if validator == nil {
		validator = schema.NewValidator(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}

	registered := make([]extractor.Extractor, len(extractors))
	copy(registered, extractors)

	return &Manager{
		extractors: registered,
		validator:  validator,
		analyzer:   analyzer,
		opts:       opts,
		logger:     logger,
	}, nil
}

// AnalyzerError wraps a failure returned by an Analyzer.
type AnalyzerError struct {
	Err error
}

func (e *AnalyzerError) Error() string { return "AI analysis failed: " + e.Err.Error() }

func (e *AnalyzerError) Unwrap() error { return e.Err }

// IsAnalyzerError reports whether err came from the AI collaborator.
func IsAnalyzerError(err error) bool {
	var target *AnalyzerError
	return errors.As(err, &target)
}

type candidate struct {
	extractor  extractor.Extractor
	confidence float64
}

// Extract runs the extraction state machine over text. Only empty input is
// returned as an error; every other outcome is described by the result.
func (m *Manager) Extract(ctx context.Context, text string, meta model.SourceMetadata, validate bool) (*model.ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewUserError("the document contains no text", common.ErrEmptyText)
	}

	logger := common.ContextLogger(ctx, m.logger)
	result := &model.ExtractionResult{
		Method: model.MethodNone,
		Errors: []string{},
	}

	for _, c := range m.candidates(text) {
		name := c.extractor.Name()
		record, err := c.extractor.Extract(text, meta)
		if err != nil {
			logger.Debug("extractor failed", "extractor", name, "error", err)
			result.AddError(fmt.Sprintf("rule-based extraction failed (%s): %v", name, err))
			continue
		}

		logger.Info("rule-based extraction succeeded",
			"extractor", name,
			"confidence", c.confidence,
			"transactions", len(record.Transactions))

		result.Record = record
		result.Method = model.MethodRuleBased
		result.Extractor = name
		result.Confidence = c.confidence
		result.Success = true

		if !validate {
			return result, nil
		}

		schemaID, ok := record.DocumentType.SchemaID()
		if !ok {
			return result, nil
		}

		report := m.validator.Validate(record, schemaID)
		result.Validation = &report
		if report.Valid {
			return result, nil
		}

		logger.Warn("rule-based result failed schema validation",
			"extractor", name,
			"schema", schemaID,
			"errors", len(report.Errors))
		result.Success = false
		result.AddError("rule-based result failed schema validation")

		if !m.opts.EnableAIFallback {
			return result, nil
		}

		aiResult, err := m.analyze(ctx, text, record.DocumentType, validate, result.Errors)
		if err != nil {
			result.AddError(err.Error())
			return result, nil
		}
		return aiResult, nil
	}

	if m.opts.EnableAIFallback {
		aiResult, err := m.analyze(ctx, text, model.DocumentUnknown, validate, result.Errors)
		if err != nil {
			result.AddError(err.Error())
			return result, nil
		}
		return aiResult, nil
	}

	result.AddError(common.ErrNoExtractor.Error())
	return result, nil
}

// candidates returns the extractors that claim text, ordered by the selection policy.
func (m *Manager) candidates(text string) []candidate {
	var matched []candidate
	for _, e := range m.extractors {
		ok, confidence := e.CanExtract(text)
		if !ok {
			continue
		}
		matched = append(matched, candidate{extractor: e, confidence: confidence})
	}

	if m.opts.Selection == BestConfidence {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].confidence > matched[j].confidence
		})
	}
	return matched
}

// analyze performs the single AI call and interprets its payload. Prior errors
// are carried into the returned result.
func (m *Manager) analyze(ctx context.Context, text string, hint model.DocumentType, validate bool, prior []string) (*model.ExtractionResult, error) {
	logger := common.ContextLogger(ctx, m.logger)
	prompt := text
	if m.opts.Masker != nil {
		masked := m.opts.Masker.ForContext(text).Mask(text)
		prompt = masked.Masked
		logger.Debug("masked text before AI analysis", "findings", masked.Count)
	}

	start := time.Now()
	raw, err := m.analyzer.AnalyzeDocument(ctx, prompt, hint)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = common.ErrEmptyResponse
	}
	if err != nil {
		logger.Warn("AI analysis failed", "hint", hint, "error", err)
		return nil, &AnalyzerError{Err: err}
	}
	logger.Info("AI analysis completed", "hint", hint, "duration", time.Since(start))

	result := &model.ExtractionResult{
		Method:  model.MethodAI,
		Success: true,
		Errors:  append([]string{}, prior...),
	}

	payload := common.CleanMarkdownWrapper(raw)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		result.RawContent = raw
		return result, nil
	}
	result.Payload = decoded

	record, ok := decodeRecord(payload)
	if !ok {
		return result, nil
	}
	result.Record = record

	if !validate {
		return result, nil
	}
	if schemaID, ok := record.DocumentType.SchemaID(); ok {
		report := m.validator.Validate(decoded, schemaID)
		result.Validation = &report
		if !report.Valid {
			result.AddError("AI result failed schema validation")
		}
	}
	return result, nil
}

// decodeRecord reads an AI payload as a record when it names a known document type.
func decodeRecord(payload string) (*model.Record, bool) {
	var record model.Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, false
	}
	if !record.DocumentType.Valid() || record.DocumentType == model.DocumentUnknown {
		return nil, false
	}
	if record.Transactions == nil {
		record.Transactions = []model.Transaction{}
	}
	if record.Metadata == nil {
		record.Metadata = &model.Metadata{}
	}
	record.Metadata.ExtractionMethod = model.MethodAI
	if record.Metadata.ExtractedAt.IsZero() {
		record.Metadata.ExtractedAt = time.Now()
	}
	return &record, true
}

// Extractors describes the registered extractors in registration order.
func (m *Manager) Extractors() []ExtractorInfo {
	infos := make([]ExtractorInfo, 0, len(m.extractors))
	for _, e := range m.extractors {
		schemaID, _ := e.DocumentType().SchemaID()
		infos = append(infos, ExtractorInfo{
			Name:         e.Name(),
			DocumentType: e.DocumentType(),
			SchemaID:     schemaID,
		})
	}
	return infos
}

// Schemas lists the schema ids available to the validator.
func (m *Manager) Schemas() ([]string, error) {
	ids, err := m.validator.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return ids, nil
}
