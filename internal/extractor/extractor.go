// Package extractor holds the rule-based field extractors, one per issuer layout.
package extractor

import (
	"github.com/Veraticus/ledgerguard/internal/model"
)

// Extractor recognises one document layout and pulls structured fields from it.
type Extractor interface {
	// Name identifies the extractor in results and logs.
	Name() string
	// DocumentType is the type of record Extract produces.
	DocumentType() model.DocumentType
	// CanExtract reports whether text looks like this layout, and how confident it is.
	CanExtract(text string) (bool, float64)
	// Extract builds a record. Missing fields are omitted; an error means nothing
	// usable was found.
	Extract(text string, meta model.SourceMetadata) (*model.Record, error)
}

// Defaults returns fresh instances of every built-in extractor in registration order.
func Defaults() []Extractor {
	return []Extractor{
		NewFubonCreditCard(),
		NewBankStatement(),
	}
}
