package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/model"
)

const analysisSystemPrompt = "你是一個專業的金融文件分析助手，擅長從文件中提取關鍵資訊。請只回傳 JSON，不要加上任何說明文字或 markdown 格式。"

// Prompt kinds understood by DocumentAnalyzer.
const (
	PromptFinancial     = "financial"
	PromptBankStatement = "bank_statement"
	PromptCreditCard    = "credit_card"
)

var basePrompts = map[string]string{
	PromptFinancial: `你是一個專業的金融文件分析助手。請分析以下文件並提取關鍵資訊。

請以 JSON 格式返回以下資訊：
{
    "document_type": "bank_statement | credit_card | transaction_notice",
    "bank_name": "金融機構名稱",
    "summary": "文件摘要",
    "transactions": [
        {
            "transaction_date": "YYYY-MM-DD",
            "description": "交易描述",
            "amount": 0,
            "currency": "TWD",
            "transaction_type": "purchase | payment | installment | fee | deposit | withdrawal | other"
        }
    ]
}`,
	PromptBankStatement: `你是銀行對帳單分析專家。請分析以下對帳單並提取：
1. 帳戶資訊 (account_info)
2. 期初/期末餘額 (balance_info)
3. 所有交易記錄 (transactions)
4. 統計資訊 (summary)

請以結構化的 JSON 格式返回，document_type 為 "bank_statement"，日期使用 YYYY-MM-DD，金額使用數字。`,
	PromptCreditCard: `你是信用卡帳單分析專家。請分析以下帳單並提取：
1. 帳單週期 (statement_period)
2. 應繳金額與到期日 (payment_info)
3. 消費明細 (transactions)
4. 重要提醒事項

請以結構化的 JSON 格式返回，document_type 為 "credit_card"，日期使用 YYYY-MM-DD，金額使用數字。`,
}

// DocumentAnalyzer builds document prompts and sends them through a Client.
type DocumentAnalyzer struct {
	client Client
	logger *slog.Logger
	// Instructions are appended to every document prompt when set.
	Instructions string
}

// NewDocumentAnalyzer creates an analyzer backed by client.
func NewDocumentAnalyzer(client Client, logger *slog.Logger) *DocumentAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentAnalyzer{client: client, logger: logger}
}

// PromptKind maps a document type to the prompt used for it.
func PromptKind(docType model.DocumentType) string {
	switch docType {
	case model.DocumentBankStatement:
		return PromptBankStatement
	case model.DocumentCreditCard:
		return PromptCreditCard
	default:
		return PromptFinancial
	}
}

// BuildPrompt assembles the user prompt for a document.
func BuildPrompt(text, kind, instructions string) string {
	base, ok := basePrompts[kind]
	if !ok {
		base = basePrompts[PromptFinancial]
	}

	var b strings.Builder
	b.WriteString(base)
	if instructions != "" {
		b.WriteString("\n\n額外指示：")
		b.WriteString(instructions)
	}
	b.WriteString("\n\n文件內容：\n")
	b.WriteString(text)
	return b.String()
}

// AnalyzeDocument asks the model to structure text and returns its raw answer.
func (a *DocumentAnalyzer) AnalyzeDocument(ctx context.Context, text string, docType model.DocumentType) (string, error) {
	kind := PromptKind(docType)
	start := time.Now()

	content, err := a.client.Analyze(ctx, BuildPrompt(text, kind, a.Instructions), analysisSystemPrompt)
	if err != nil {
		return "", fmt.Errorf("document analysis failed: %w", err)
	}

	a.logger.Debug("document analyzed",
		"prompt", kind,
		"duration", time.Since(start),
		"response_length", len(content))

	return content, nil
}

// ExtractStructured asks the model to fill the given structure from text and
// decodes the JSON answer.
func (a *DocumentAnalyzer) ExtractStructured(ctx context.Context, text string, structure map[string]any) (map[string]any, error) {
	shape, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode structure: %w", err)
	}

	prompt := fmt.Sprintf("請從以下文字中提取資訊，並按照指定的結構返回 JSON 格式資料。\n\n期望的資料結構：\n%s\n\n文字內容：\n%s\n\n請嚴格按照上述結構返回 JSON 格式資料。", shape, text)

	content, err := a.client.Analyze(ctx, prompt, analysisSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("structured extraction failed: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(common.CleanMarkdownWrapper(content)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse structured response: %w", err)
	}
	return out, nil
}

// Summarize returns a short summary of text, at most maxLength characters as
// requested from the model. A non-positive maxLength means 200.
func (a *DocumentAnalyzer) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = 200
	}

	prompt := fmt.Sprintf("請將以下文字摘要為 %d 字以內的重點摘要。\n\n文字內容：\n%s\n\n請提供簡潔的摘要。", maxLength, text)

	content, err := a.client.Analyze(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(content), nil
}
