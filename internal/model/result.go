package model

// ValidationError is one structural schema violation.
type ValidationError struct {
	Message    string `json:"message"`
	Path       string `json:"path"`
	SchemaPath string `json:"schema_path,omitempty"`
	Rule       string `json:"validator"`
}

// ValidationReport is the outcome of validating a record against a schema.
// A report can be valid and still carry warnings.
type ValidationReport struct {
	SchemaID string            `json:"schema_id"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
	Valid    bool              `json:"valid"`
}

// ErrorMessages flattens the report errors into strings.
func (r *ValidationReport) ErrorMessages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Path != "" {
			messages = append(messages, e.Path+": "+e.Message)
			continue
		}
		messages = append(messages, e.Message)
	}
	return messages
}

// ExtractionResult is returned by every extraction attempt, successful or not.
type ExtractionResult struct {
	Record     *Record           `json:"data,omitempty"`
	Payload    map[string]any    `json:"payload,omitempty"`
	Validation *ValidationReport `json:"validation,omitempty"`
	ID         string            `json:"id,omitempty"`
	Method     Method            `json:"method"`
	Extractor  string            `json:"extractor,omitempty"`
	RawContent string            `json:"raw_content,omitempty"`
	Errors     []string          `json:"errors"`
	Confidence float64           `json:"confidence,omitempty"`
	Success    bool              `json:"success"`
}

// HasWarnings reports whether validation produced any warnings.
func (r *ExtractionResult) HasWarnings() bool {
	return r.Validation != nil && len(r.Validation.Warnings) > 0
}

// AddError appends a message to the result's error log.
func (r *ExtractionResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
