package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/shopspring/decimal"
)

var (
	bankName        = regexp.MustCompile(`(\p{Han}{2,8}銀行)`)
	bankAccount     = regexp.MustCompile(`帳號[: ]*([\d\-*]{6,})`)
	bankCurrency    = regexp.MustCompile(`幣別[: ]*([A-Z]{3})`)
	bankPeriod      = regexp.MustCompile(`(?:對帳|查詢)?期間[^\d\n]*(\d{2,4})[/.-](\d{1,2})[/.-](\d{1,2})\s*[~至-]\s*(\d{2,4})[/.-](\d{1,2})[/.-](\d{1,2})`)
	bankOpening     = regexp.MustCompile(`(?:期初餘額|上期餘額)[^\d\n-]*(-?[\d,]+(?:\.\d+)?)`)
	bankClosing     = regexp.MustCompile(`(?:期末餘額|本期餘額)[^\d\n-]*(-?[\d,]+(?:\.\d+)?)`)
	bankAvailable   = regexp.MustCompile(`可用餘額[^\d\n-]*(-?[\d,]+(?:\.\d+)?)`)
	bankLine        = regexp.MustCompile(`^(\d{2,4})[/.-](\d{1,2})[/.-](\d{1,2})\s+(.*)$`)
	bankNumberToken = regexp.MustCompile(`^-?[\d,]*\d(?:\.\d+)?$`)
)

var (
	depositKeywords    = []string{"存入", "轉入", "利息", "薪資", "現金存款"}
	withdrawalKeywords = []string{"支出", "提款", "轉出", "扣款", "ATM", "跨行"}
)

// BankStatement extracts generic deposit account statements: a dated line per
// movement followed by the amount and the running balance.
type BankStatement struct {
	signatures signatures
	now        func() time.Time
}

// NewBankStatement creates the generic bank statement extractor.
func NewBankStatement() *BankStatement {
	return &BankStatement{
		signatures: newSignatures("對帳單", "存款", "帳號", "餘額", "存入", "支出", "交易日期"),
		now:        time.Now,
	}
}

// Name implements Extractor.
func (b *BankStatement) Name() string { return "bank_statement" }

// DocumentType implements Extractor.
func (b *BankStatement) DocumentType() model.DocumentType { return model.DocumentBankStatement }

// CanExtract implements Extractor.
func (b *BankStatement) CanExtract(text string) (bool, float64) {
	return b.signatures.score(normalize(text))
}

// Extract implements Extractor.
func (b *BankStatement) Extract(text string, meta model.SourceMetadata) (*model.Record, error) {
	text = normalize(text)
	_, confidence := b.signatures.score(text)

	record := &model.Record{
		DocumentType:    model.DocumentBankStatement,
		StatementPeriod: b.period(text),
		AccountInfo:     b.account(text),
		BalanceInfo:     b.balances(text),
	}
	if m := bankName.FindStringSubmatch(text); m != nil {
		record.BankName = m[1]
	}

	opening := decimal.Decimal{}
	hasOpening := false
	if record.BalanceInfo != nil && record.BalanceInfo.OpeningBalance != nil {
		opening, hasOpening = record.BalanceInfo.OpeningBalance.Decimal, true
	}
	transactions, unparsed := b.transactions(text, opening, hasOpening)
	record.Transactions = transactions

	if record.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", b.Name(), common.ErrNothingExtracted)
	}

	record.Summary = model.Summarize(transactions)
	record.Metadata = &model.Metadata{
		ExtractedAt:      b.now(),
		ExtractionMethod: model.MethodRuleBased,
		Extractor:        b.Name(),
		Confidence:       confidence,
		SourceFile:       meta.SourceFile,
		TotalPages:       meta.TotalPages,
		UnparsedLines:    unparsed,
	}

	return record, nil
}

func (b *BankStatement) period(text string) *model.StatementPeriod {
	m := bankPeriod.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start, sOK := flexibleDate(m[1], m[2], m[3])
	end, eOK := flexibleDate(m[4], m[5], m[6])
	if !sOK || !eOK {
		return nil
	}
	return &model.StatementPeriod{
		StartDate: &start,
		EndDate:   &end,
		Year:      end.Year(),
		Month:     int(end.Month()),
	}
}

func (b *BankStatement) account(text string) *model.AccountInfo {
	info := model.AccountInfo{}
	if m := bankAccount.FindStringSubmatch(text); m != nil {
		info.AccountNumber = maskAccount(m[1])
	}
	if m := bankCurrency.FindStringSubmatch(text); m != nil {
		info.Currency = m[1]
	}
	if info == (model.AccountInfo{}) {
		return nil
	}
	return &info
}

func (b *BankStatement) balances(text string) *model.BalanceInfo {
	info := model.BalanceInfo{
		OpeningBalance:   submatchAmount(bankOpening, text),
		ClosingBalance:   submatchAmount(bankClosing, text),
		AvailableBalance: submatchAmount(bankAvailable, text),
	}
	if info == (model.BalanceInfo{}) {
		return nil
	}
	return &info
}

// transactions reads dated lines ending in "<amount> <balance>". The direction
// of each movement comes from the balance change when the previous balance is
// known, otherwise from keywords.
func (b *BankStatement) transactions(text string, balance decimal.Decimal, known bool) ([]model.Transaction, int) {
	transactions := make([]model.Transaction, 0)
	unparsed := 0

	currency := model.DefaultCurrency
	if m := bankCurrency.FindStringSubmatch(text); m != nil {
		currency = m[1]
	}

	for _, line := range strings.Split(text, "\n") {
		m := bankLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		date, ok := flexibleDate(m[1], m[2], m[3])
		if !ok {
			continue
		}

		fields := strings.Fields(m[4])
		tail := 0
		for i := len(fields) - 1; i >= 0 && bankNumberToken.MatchString(fields[i]); i-- {
			tail++
		}
		if tail < 2 {
			unparsed++
			continue
		}

		amount, aOK := parseAmount(fields[len(fields)-2])
		newBalance, bOK := parseAmount(fields[len(fields)-1])
		if !aOK || !bOK {
			unparsed++
			continue
		}

		description := strings.Join(fields[:len(fields)-tail], " ")
		txn := model.Transaction{
			TransactionDate: date,
			Currency:        currency,
			Description:     description,
			Balance:         model.AmountPtr(newBalance),
		}
		if len(fields) > tail {
			txn.Merchant = fields[0]
		}

		txn.TransactionType = direction(line, amount, balance, newBalance, known)
		switch txn.TransactionType {
		case model.TransactionWithdrawal:
			txn.Amount = model.NewAmount(amount.Abs().Neg())
		default:
			txn.Amount = model.NewAmount(amount.Abs())
		}

		balance, known = newBalance, true
		transactions = append(transactions, txn)
	}

	return transactions, unparsed
}

func direction(line string, amount, previous, current decimal.Decimal, known bool) model.TransactionType {
	if known {
		delta := current.Sub(previous)
		switch {
		case delta.Equal(amount.Abs()):
			return model.TransactionDeposit
		case delta.Equal(amount.Abs().Neg()):
			return model.TransactionWithdrawal
		}
	}
	switch {
	case containsAny(line, depositKeywords):
		return model.TransactionDeposit
	case containsAny(line, withdrawalKeywords):
		return model.TransactionWithdrawal
	default:
		return model.TransactionOther
	}
}
