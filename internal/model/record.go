// Package model defines the value types produced by the extraction pipeline.
package model

// Record is a structured financial document.
// It is built once per extraction call and never mutated after return.
type Record struct {
	StatementPeriod *StatementPeriod `json:"statement_period,omitempty"`
	PaymentInfo     *PaymentInfo     `json:"payment_info,omitempty"`
	CardInfo        *CardInfo        `json:"card_info,omitempty"`
	InterestInfo    *InterestInfo    `json:"interest_info,omitempty"`
	AccountInfo     *AccountInfo     `json:"account_info,omitempty"`
	BalanceInfo     *BalanceInfo     `json:"balance_info,omitempty"`
	Summary         *Summary         `json:"summary,omitempty"`
	Metadata        *Metadata        `json:"metadata,omitempty"`
	DocumentType    DocumentType     `json:"document_type"`
	BankName        string           `json:"bank_name,omitempty"`
	Transactions    []Transaction    `json:"transactions"`
}

// StatementPeriod is the billing period of a statement.
type StatementPeriod struct {
	StatementDate *Date `json:"statement_date,omitempty"`
	StartDate     *Date `json:"start_date,omitempty"`
	EndDate       *Date `json:"end_date,omitempty"`
	Year          int   `json:"year,omitempty"`
	Month         int   `json:"month,omitempty"`
}

// PaymentInfo holds the amounts due on a credit card bill.
type PaymentInfo struct {
	TotalAmountDue  *Amount    `json:"total_amount_due,omitempty"`
	MinimumPayment  *Amount    `json:"minimum_payment,omitempty"`
	PreviousBalance *Amount    `json:"previous_balance,omitempty"`
	NewCharges      *Amount    `json:"new_charges,omitempty"`
	DueDate         *Date      `json:"due_date,omitempty"`
	AutoDebit       *AutoDebit `json:"auto_debit,omitempty"`
}

// AutoDebit describes automatic payment from a bank account.
type AutoDebit struct {
	AccountNumber string `json:"account_number,omitempty"`
	AmountType    string `json:"amount_type"`
	Enabled       bool   `json:"enabled"`
}

// CardInfo identifies the card a bill belongs to.
type CardInfo struct {
	CreditLimit      *Amount `json:"credit_limit,omitempty"`
	CashAdvanceLimit *Amount `json:"cash_advance_limit,omitempty"`
	CardType         string  `json:"card_type,omitempty"`
	CardLast4        string  `json:"card_last4,omitempty"`
}

// InterestInfo holds interest rates and year-to-date charges.
type InterestInfo struct {
	RevolvingAPR      *Amount            `json:"revolving_apr,omitempty"`
	InstallmentAPR    *Amount            `json:"installment_apr,omitempty"`
	AnnualInterestFee *AnnualInterestFee `json:"annual_interest_fee,omitempty"`
}

// AnnualInterestFee is the cumulative interest and fees charged this year.
type AnnualInterestFee struct {
	Interest Amount `json:"interest"`
	Fee      Amount `json:"fee"`
}

// AccountInfo identifies a deposit account.
type AccountInfo struct {
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// BalanceInfo holds the balances reported on a bank statement.
type BalanceInfo struct {
	OpeningBalance   *Amount `json:"opening_balance,omitempty"`
	ClosingBalance   *Amount `json:"closing_balance,omitempty"`
	AvailableBalance *Amount `json:"available_balance,omitempty"`
}

// IsEmpty reports whether no field beyond the document type was populated.
func (r *Record) IsEmpty() bool {
	return r.BankName == "" &&
		r.StatementPeriod == nil &&
		r.PaymentInfo == nil &&
		r.CardInfo == nil &&
		r.InterestInfo == nil &&
		r.AccountInfo == nil &&
		r.BalanceInfo == nil &&
		len(r.Transactions) == 0
}
