package model

import "time"

// DocumentType tags the kind of financial document a record was extracted from.
type DocumentType string

// Document type constants.
const (
	DocumentBankStatement     DocumentType = "bank_statement"
	DocumentCreditCard        DocumentType = "credit_card"
	DocumentTransactionNotice DocumentType = "transaction_notice"
	DocumentUnknown           DocumentType = "unknown"
)

// DocumentTypes lists the closed set of document types in a stable order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentBankStatement,
		DocumentCreditCard,
		DocumentTransactionNotice,
		DocumentUnknown,
	}
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentBankStatement, DocumentCreditCard, DocumentTransactionNotice, DocumentUnknown:
		return true
	default:
		return false
	}
}

// DisplayName returns a human readable label.
func (t DocumentType) DisplayName() string {
	switch t {
	case DocumentBankStatement:
		return "銀行對帳單"
	case DocumentCreditCard:
		return "信用卡帳單"
	case DocumentTransactionNotice:
		return "交易通知"
	default:
		return "未知文件"
	}
}

// SchemaID maps a document type onto the schema that validates it.
// It returns false for types without a schema.
func (t DocumentType) SchemaID() (string, bool) {
	switch t {
	case DocumentCreditCard:
		return "credit_card_schema", true
	case DocumentBankStatement:
		return "bank_statement_schema", true
	default:
		return "", false
	}
}

// Method records which path produced an extraction result.
type Method string

// Extraction method constants.
const (
	MethodRuleBased Method = "rule_based"
	MethodAI        Method = "ai"
	MethodNone      Method = "none"
)

// SourceMetadata describes where a document's text came from.
type SourceMetadata struct {
	SourceFile string `json:"source_file,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
}

// Metadata is attached to every extracted record.
type Metadata struct {
	ExtractedAt      time.Time `json:"extracted_at"`
	ExtractionMethod Method    `json:"extraction_method"`
	SourceFile       string    `json:"source_file,omitempty"`
	Extractor        string    `json:"extractor,omitempty"`
	Confidence       float64   `json:"confidence"`
	TotalPages       int       `json:"total_pages,omitempty"`
	UnparsedLines    int       `json:"unparsed_lines,omitempty"`
}
