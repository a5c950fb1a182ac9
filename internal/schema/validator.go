// Package schema validates structured records against JSON Schema definitions.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

// recommended lists optional field paths per schema whose absence yields a warning.
var recommended = map[string][]string{
	"credit_card_schema":    {"summary", "interest_info.annual_interest_fee", "card_info.credit_limit"},
	"bank_statement_schema": {"summary", "balance_info.available_balance"},
}

const rootContext = "(root)"

// Info summarises a schema definition.
type Info struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	Properties  []string `json:"properties"`
}

type compiled struct {
	schema *gojsonschema.Schema
	info   Info
}

// Validator checks records against schemas loaded from a Source.
// Compiled schemas are cached per id and shared between goroutines.
type Validator struct {
	source Source
	logger *slog.Logger
	cache  map[string]*compiled
	mu     sync.RWMutex
}

// NewValidator creates a validator backed by src.
func NewValidator(src Source, logger *slog.Logger) *Validator {
	if src == nil {
		src = EmbeddedSource()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		source: src,
		logger: logger,
		cache:  make(map[string]*compiled),
	}
}

// Validate checks data against the schema named schemaID. Problems, including
// a missing schema, are reported in the returned report rather than as errors.
func (v *Validator) Validate(data any, schemaID string) model.ValidationReport {
	report := model.ValidationReport{
		SchemaID: schemaID,
		Errors:   []model.ValidationError{},
		Warnings: []string{},
	}

	c, err := v.load(schemaID)
	if err != nil {
		report.Errors = append(report.Errors, model.ValidationError{
			Message: err.Error(),
			Rule:    "schema",
		})
		return report
	}

	doc, err := encode(data)
	if err != nil {
		report.Errors = append(report.Errors, model.ValidationError{
			Message: err.Error(),
			Rule:    "encoding",
		})
		return report
	}

	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		report.Errors = append(report.Errors, model.ValidationError{
			Message: fmt.Sprintf("failed to evaluate document: %v", err),
			Rule:    "encoding",
		})
		return report
	}

	for _, re := range result.Errors() {
		field := fieldPath(re)
		report.Errors = append(report.Errors, model.ValidationError{
			Message:    re.Description(),
			Path:       field,
			SchemaPath: schemaPath(field, re.Type()),
			Rule:       re.Type(),
		})
	}
	report.Valid = result.Valid()
	report.Warnings = missingRecommended(doc, recommended[schemaID])

	v.logger.Debug("validated document",
		"schema", schemaID,
		"valid", report.Valid,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings))

	return report
}

// Info describes a schema's title, required fields and properties.
func (v *Validator) Info(schemaID string) (Info, error) {
	c, err := v.load(schemaID)
	if err != nil {
		return Info{}, err
	}
	return c.info, nil
}

// List returns the available schema ids.
func (v *Validator) List() ([]string, error) {
	return v.source.List()
}

func (v *Validator) load(id string) (*compiled, error) {
	v.mu.RLock()
	c, ok := v.cache[id]
	v.mu.RUnlock()
	if ok {
		return c, nil
	}

	raw, err := v.source.Load(id)
	if err != nil {
		v.logger.Warn("schema unavailable", "schema", id, "error", err)
		return nil, err
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", id, err)
	}

	info, err := describe(id, raw)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if existing, ok := v.cache[id]; ok {
		return existing, nil
	}
	c = &compiled{schema: schema, info: info}
	v.cache[id] = c
	v.logger.Debug("schema compiled", "schema", id)
	return c, nil
}

func describe(id string, raw []byte) (Info, error) {
	var doc struct {
		Properties  map[string]json.RawMessage `json:"properties"`
		Title       string                     `json:"title"`
		Description string                     `json:"description"`
		Required    []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Info{}, fmt.Errorf("failed to parse schema %s: %w", id, err)
	}

	properties := make([]string, 0, len(doc.Properties))
	for name := range doc.Properties {
		properties = append(properties, name)
	}
	sort.Strings(properties)

	required := doc.Required
	if required == nil {
		required = []string{}
	}

	return Info{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		Required:    required,
		Properties:  properties,
	}, nil
}

func encode(data any) ([]byte, error) {
	switch d := data.(type) {
	case []byte:
		return d, nil
	case json.RawMessage:
		return d, nil
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return out, nil
}

// fieldPath renders the failing location as a dotted path without the root marker.
// Required errors point at the missing property itself.
func fieldPath(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == rootContext {
		field = ""
	}
	if re.Type() == "required" {
		if property, ok := re.Details()["property"].(string); ok {
			if field == "" {
				return property
			}
			return field + "." + property
		}
	}
	return field
}

func schemaPath(field, rule string) string {
	var b strings.Builder
	b.WriteString("#")
	if field != "" {
		for _, part := range strings.Split(field, ".") {
			if isIndex(part) {
				b.WriteString("/items")
				continue
			}
			b.WriteString("/properties/")
			b.WriteString(part)
		}
	}
	b.WriteString("/")
	b.WriteString(rule)
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func missingRecommended(doc []byte, paths []string) []string {
	warnings := []string{}
	if len(paths) == 0 {
		return warnings
	}

	var data map[string]any
	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return warnings
	}

	for _, p := range paths {
		if !present(data, p) {
			warnings = append(warnings, "建議填寫欄位: "+p)
		}
	}
	return warnings
}

func present(data map[string]any, dotted string) bool {
	var current any = data
	for _, key := range strings.Split(dotted, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return false
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return false
		}
	}
	return true
}
