package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/model"
)

const fubonBankName = "台北富邦銀行"

var (
	fubonStatementMonth = regexp.MustCompile(`帳單年月[^\d\n]*(\d{2,3})/(\d{1,2})`)
	fubonStatementDate  = regexp.MustCompile(`帳單結帳日[^\d\n]*(\d{2,3})/(\d{1,2})/(\d{1,2})`)
	fubonTotalDue       = regexp.MustCompile(`本期應繳總額[^\d\n]*?([\d,]+)`)
	fubonMinimumPayment = regexp.MustCompile(`最低應繳金額[^\d\n]*?([\d,]+)`)
	fubonPreviousDue    = regexp.MustCompile(`前期應繳總額[^\d\n]*?([\d,]+)`)
	fubonNewCharges     = regexp.MustCompile(`本期新增[^\d\n]*?([\d,]+)`)
	fubonDueDate        = regexp.MustCompile(`繳款截止日[^\d\n]*(\d{2,3})/(\d{1,2})/(\d{1,2})`)
	fubonAutoDebit      = regexp.MustCompile(`自動轉帳.*?扣繳帳號:\s*(\d+\*+\d+)`)
	fubonCard           = regexp.MustCompile(`([\p{L}\p{N} ]+?卡)末4碼:?\s*(\d{4})`)
	fubonCreditLimit    = regexp.MustCompile(`信用額度[^\d\n]*?([\d,]+)`)
	fubonCashAdvance    = regexp.MustCompile(`(?:國內)?預借現金額度[^\d\n]*?([\d,]+)`)
	fubonRevolvingAPR   = regexp.MustCompile(`循環信用(?:年)?利率[^\d\n]*?([\d.]+)%`)
	fubonInstallmentAPR = regexp.MustCompile(`帳單分期(?:年)?利率[^\d\n]*?([\d.]+)%`)
	fubonAnnualCharges  = regexp.MustCompile(`年度累計利息/費用[^\d\n]*?([\d,]+)/([\d,]+)`)

	txnLeadingDate = regexp.MustCompile(`^\s*\d{2,3}/\d{1,2}/\d{1,2}`)
	txnDate        = regexp.MustCompile(`(\d{2,3})/(\d{1,2})/(\d{1,2})`)
	txnAmount      = regexp.MustCompile(`(?:^|\s)(-?[\d,]*\d)\s*$`)
	txnCurrency    = regexp.MustCompile(`\b(TWD|JPY|USD|EUR|CNY)\b`)
	txnForeign     = regexp.MustCompile(`([\d,]+\.\d+)/`)
	txnPeriod      = regexp.MustCompile(`\((\d+)/(\d+)期\)`)
	txnRemaining   = regexp.MustCompile(`尚有未到期金額\s*NT\$?\s*([\d,]+)`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

var (
	paymentKeywords     = []string{"繳款", "扣繳"}
	installmentKeywords = []string{"分期"}
	feeKeywords         = []string{"服務費", "手續費", "年費"}
)

// FubonCreditCard extracts Taipei Fubon Bank credit card statements.
type FubonCreditCard struct {
	signatures signatures
	now        func() time.Time
}

// NewFubonCreditCard creates the Fubon credit card extractor.
func NewFubonCreditCard() *FubonCreditCard {
	return &FubonCreditCard{
		signatures: newSignatures("台北富邦", "富邦", "本期應繳總額", "繳款截止日", "循環信用"),
		now:        time.Now,
	}
}

// Name implements Extractor.
func (f *FubonCreditCard) Name() string { return "fubon_credit_card" }

// DocumentType implements Extractor.
func (f *FubonCreditCard) DocumentType() model.DocumentType { return model.DocumentCreditCard }

// CanExtract implements Extractor.
func (f *FubonCreditCard) CanExtract(text string) (bool, float64) {
	return f.signatures.score(normalize(text))
}

// Extract implements Extractor.
func (f *FubonCreditCard) Extract(text string, meta model.SourceMetadata) (*model.Record, error) {
	text = normalize(text)
	_, confidence := f.signatures.score(text)

	record := &model.Record{
		DocumentType:    model.DocumentCreditCard,
		StatementPeriod: f.statementPeriod(text),
		PaymentInfo:     f.paymentInfo(text),
		CardInfo:        f.cardInfo(text),
		InterestInfo:    f.interestInfo(text),
	}

	transactions, unparsed := f.transactions(text)
	record.Transactions = transactions

	if record.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", f.Name(), common.ErrNothingExtracted)
	}

	record.BankName = fubonBankName
	record.Summary = model.Summarize(transactions)
	record.Metadata = &model.Metadata{
		ExtractedAt:      f.now(),
		ExtractionMethod: model.MethodRuleBased,
		Extractor:        f.Name(),
		Confidence:       confidence,
		SourceFile:       meta.SourceFile,
		TotalPages:       meta.TotalPages,
		UnparsedLines:    unparsed,
	}

	return record, nil
}

func (f *FubonCreditCard) statementPeriod(text string) *model.StatementPeriod {
	var period model.StatementPeriod
	found := false

	if m := fubonStatementMonth.FindStringSubmatch(text); m != nil {
		year, yErr := strconv.Atoi(m[1])
		month, mErr := strconv.Atoi(m[2])
		if yErr == nil && mErr == nil && month >= 1 && month <= 12 {
			period.Year = RocYear(year)
			period.Month = month
			found = true
		}
	}

	if m := fubonStatementDate.FindStringSubmatch(text); m != nil {
		if date, ok := rocDate(m[1], m[2], m[3]); ok {
			period.StatementDate = &date
			found = true
		}
	}

	if !found {
		return nil
	}
	return &period
}

func (f *FubonCreditCard) paymentInfo(text string) *model.PaymentInfo {
	info := model.PaymentInfo{
		TotalAmountDue:  submatchAmount(fubonTotalDue, text),
		MinimumPayment:  submatchAmount(fubonMinimumPayment, text),
		PreviousBalance: submatchAmount(fubonPreviousDue, text),
		NewCharges:      submatchAmount(fubonNewCharges, text),
	}

	if m := fubonDueDate.FindStringSubmatch(text); m != nil {
		if date, ok := rocDate(m[1], m[2], m[3]); ok {
			info.DueDate = &date
		}
	}

	if m := fubonAutoDebit.FindStringSubmatch(text); m != nil {
		info.AutoDebit = &model.AutoDebit{
			Enabled:       true,
			AccountNumber: m[1],
			AmountType:    "total",
		}
	}

	if info == (model.PaymentInfo{}) {
		return nil
	}
	return &info
}

func (f *FubonCreditCard) cardInfo(text string) *model.CardInfo {
	info := model.CardInfo{
		CreditLimit:      submatchAmount(fubonCreditLimit, text),
		CashAdvanceLimit: submatchAmount(fubonCashAdvance, text),
	}

	if m := fubonCard.FindStringSubmatch(text); m != nil {
		info.CardType = strings.TrimSpace(m[1])
		info.CardLast4 = m[2]
	}

	if info == (model.CardInfo{}) {
		return nil
	}
	return &info
}

func (f *FubonCreditCard) interestInfo(text string) *model.InterestInfo {
	info := model.InterestInfo{
		RevolvingAPR:   submatchAmount(fubonRevolvingAPR, text),
		InstallmentAPR: submatchAmount(fubonInstallmentAPR, text),
	}

	if m := fubonAnnualCharges.FindStringSubmatch(text); m != nil {
		interest, iOK := parseAmount(m[1])
		fee, fOK := parseAmount(m[2])
		if iOK && fOK {
			info.AnnualInterestFee = &model.AnnualInterestFee{Interest: model.NewAmount(interest), Fee: model.NewAmount(fee)}
		}
	}

	if info == (model.InterestInfo{}) {
		return nil
	}
	return &info
}

// transactions scans the table between the column header and the page footer.
// It returns the parsed lines and the number of dated lines without an amount.
func (f *FubonCreditCard) transactions(text string) ([]model.Transaction, int) {
	transactions := make([]model.Transaction, 0)
	unparsed := 0
	inTable := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.Contains(line, "消費日期") && strings.Contains(line, "消費說明"):
			inTable = true
			continue
		case !inTable:
			continue
		case strings.Contains(line, "第") && strings.Contains(line, "頁"),
			strings.Contains(line, "本期應繳金額"):
			inTable = false
			continue
		}

		if !txnLeadingDate.MatchString(line) {
			continue
		}

		txn, ok := parseFubonLine(line)
		if !ok {
			unparsed++
			continue
		}
		transactions = append(transactions, txn)
	}

	return transactions, unparsed
}

func parseFubonLine(line string) (model.Transaction, bool) {
	dates := txnDate.FindAllStringSubmatchIndex(line, 2)
	if len(dates) == 0 {
		return model.Transaction{}, false
	}

	amountMatch := txnAmount.FindStringSubmatchIndex(line)
	if amountMatch == nil {
		return model.Transaction{}, false
	}
	amount, ok := parseAmount(line[amountMatch[2]:amountMatch[3]])
	if !ok {
		return model.Transaction{}, false
	}

	first := dates[0]
	txnDateValue, ok := rocDate(line[first[2]:first[3]], line[first[4]:first[5]], line[first[6]:first[7]])
	if !ok {
		return model.Transaction{}, false
	}

	txn := model.Transaction{
		TransactionDate: txnDateValue,
		Currency:        model.DefaultCurrency,
	}

	descEnd := amountMatch[2]
	if len(dates) > 1 {
		second := dates[1]
		if post, ok := rocDate(line[second[2]:second[3]], line[second[4]:second[5]], line[second[6]:second[7]]); ok {
			txn.PostDate = &post
		}
		descEnd = second[0]
	}
	if descEnd < first[1] {
		descEnd = first[1]
	}

	description := txnCurrency.ReplaceAllString(line[first[1]:descEnd], "")
	txn.Description = strings.TrimSpace(spaceRun.ReplaceAllString(description, " "))
	if fields := strings.Fields(txn.Description); len(fields) > 0 {
		txn.Merchant = fields[0]
	}

	if m := txnCurrency.FindStringSubmatch(line); m != nil {
		txn.Currency = m[1]
	}
	if m := txnForeign.FindStringSubmatch(line); m != nil {
		txn.ForeignAmount = amountPtr(m[1])
	}

	txn.TransactionType = classifyLine(line)
	switch txn.TransactionType {
	case model.TransactionPayment:
		amount = amount.Abs().Neg()
	case model.TransactionInstallment:
		txn.Installment = installmentInfo(line)
	}
	txn.Amount = model.NewAmount(amount)

	return txn, true
}

// classifyLine applies keyword precedence: payment, installment, fee, purchase.
func classifyLine(line string) model.TransactionType {
	switch {
	case containsAny(line, paymentKeywords):
		return model.TransactionPayment
	case containsAny(line, installmentKeywords) || txnPeriod.MatchString(line):
		return model.TransactionInstallment
	case containsAny(line, feeKeywords):
		return model.TransactionFee
	default:
		return model.TransactionPurchase
	}
}

func installmentInfo(line string) *model.InstallmentInfo {
	m := txnPeriod.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	current, cErr := strconv.Atoi(m[1])
	total, tErr := strconv.Atoi(m[2])
	if cErr != nil || tErr != nil {
		return nil
	}

	info := &model.InstallmentInfo{CurrentPeriod: current, TotalPeriods: total}
	if r := txnRemaining.FindStringSubmatch(line); r != nil {
		info.RemainingAmount = amountPtr(r[1])
	}
	return info
}

func submatchAmount(re *regexp.Regexp, text string) *model.Amount {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return amountPtr(m[1])
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
