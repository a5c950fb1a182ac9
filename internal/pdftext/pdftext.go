// Package pdftext extracts page text and document info from PDF statements,
// trying candidate passwords for encrypted files.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/dslipak/pdf"
)

// Info is the document information dictionary.
type Info struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// Page is the text of one page, numbered from 1.
type Page struct {
	Text   string `json:"text"`
	Number int    `json:"page_number"`
}

// Document is the extracted content of a file.
type Document struct {
	Info         Info   `json:"info"`
	SourceFile   string `json:"source_file"`
	Text         string `json:"text"`
	PasswordHint string `json:"password_hint,omitempty"`
	Pages        []Page `json:"pages"`
	TotalPages   int    `json:"total_pages"`
	Encrypted    bool   `json:"is_encrypted"`
	PasswordUsed bool   `json:"password_used"`
}

// EncryptedError reports a protected PDF that no candidate password opened.
type EncryptedError struct {
	Err   error
	Tried int
}

func (e *EncryptedError) Error() string {
	if e.Tried == 0 {
		return "PDF is password protected; provide a password or set PDF_DEFAULT_PASSWORDS"
	}
	return fmt.Sprintf("no password could decrypt the PDF (tried %d)", e.Tried)
}

func (e *EncryptedError) Unwrap() error { return e.Err }

type opener func(f io.ReaderAt, size int64, pw func() string) (*pdf.Reader, error)

// Extractor reads PDF and plain text files.
type Extractor struct {
	logger    *slog.Logger
	open      opener
	passwords []string
}

// NewExtractor creates an extractor that tries defaultPasswords, in order,
// after any explicit password.
func NewExtractor(defaultPasswords []string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		passwords: append([]string(nil), defaultPasswords...),
		open:      pdf.NewReaderEncrypted,
		logger:    logger,
	}
}

// Candidates returns the passwords tried for a file, explicit first.
func (e *Extractor) Candidates(explicit string) []string {
	candidates := make([]string, 0, len(e.passwords)+1)
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	return append(candidates, e.passwords...)
}

// ExtractFile reads path. Text files are returned as a single page; PDFs are
// parsed page by page.
func (e *Extractor) ExtractFile(path, password string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return e.extractText(path)
	case ".pdf":
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedInput, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := e.Extract(bytes.NewReader(data), int64(len(data)), password)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = filepath.Base(path)
	return doc, nil
}

func (e *Extractor) extractText(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(data)
	return &Document{
		SourceFile: filepath.Base(path),
		Text:       text,
		Pages:      []Page{{Number: 1, Text: text}},
		TotalPages: 1,
	}, nil
}

// Extract parses a PDF from r.
func (e *Extractor) Extract(r io.ReaderAt, size int64, password string) (doc *Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	candidates := e.Candidates(password)
	var (
		tried int
		used  string
	)
	next := func() string {
		if tried >= len(candidates) {
			return ""
		}
		used = candidates[tried]
		tried++
		return used
	}

	reader, err := e.open(r, size, next)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			e.logger.Warn("encrypted PDF could not be opened", "tried", tried)
			return nil, &EncryptedError{Tried: tried, Err: err}
		}
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	doc = &Document{
		Encrypted:  tried > 0 || !reader.Trailer().Key("Encrypt").IsNull(),
		TotalPages: reader.NumPage(),
		Info:       readInfo(reader.Trailer().Key("Info")),
		Pages:      []Page{},
	}
	if tried > 0 {
		doc.PasswordUsed = true
		doc.PasswordHint = passwordHint(used)
	}

	texts := make([]string, 0, doc.TotalPages)
	for i := 1; i <= doc.TotalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Debug("skipping unreadable page", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
		texts = append(texts, text)
	}
	doc.Text = strings.Join(texts, "\n\n")

	e.logger.Debug("PDF text extracted",
		"pages", doc.TotalPages,
		"text_pages", len(doc.Pages),
		"encrypted", doc.Encrypted)

	return doc, nil
}

func readInfo(v pdf.Value) Info {
	if v.IsNull() {
		return Info{}
	}
	return Info{
		Title:    v.Key("Title").Text(),
		Author:   v.Key("Author").Text(),
		Creator:  v.Key("Creator").Text(),
		Producer: v.Key("Producer").Text(),
		Subject:  v.Key("Subject").Text(),
	}
}

// passwordHint shows the first and last character of a password only.
func passwordHint(password string) string {
	runes := []rune(password)
	if len(runes) <= 2 {
		return "***"
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1])
}
