package model

// TransactionType classifies a statement line.
type TransactionType string

// Transaction type constants.
const (
	TransactionPurchase    TransactionType = "purchase"
	TransactionPayment     TransactionType = "payment"
	TransactionInstallment TransactionType = "installment"
	TransactionFee         TransactionType = "fee"
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionOther       TransactionType = "other"
)

// DefaultCurrency is used when a line carries no currency code.
const DefaultCurrency = "TWD"

// Transaction represents a single line of a statement.
// Amount is negative for payments and other outgoing settlements.
type Transaction struct {
	TransactionDate Date             `json:"transaction_date"`
	PostDate        *Date            `json:"post_date,omitempty"`
	ForeignAmount   *Amount          `json:"foreign_amount,omitempty"`
	Installment     *InstallmentInfo `json:"installment_info,omitempty"`
	Balance         *Amount          `json:"balance,omitempty"`
	Amount          Amount           `json:"amount"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description"`
	Merchant        string           `json:"merchant,omitempty"`
	TransactionType TransactionType  `json:"transaction_type"`
}

// InstallmentInfo describes an installment plan line.
type InstallmentInfo struct {
	RemainingAmount *Amount `json:"remaining_amount,omitempty"`
	CurrentPeriod   int     `json:"current_period"`
	TotalPeriods    int     `json:"total_periods"`
}

// Summary aggregates a transaction list.
type Summary struct {
	Categories        map[string]Amount `json:"categories"`
	TotalPurchases    Amount            `json:"total_purchases"`
	TotalPayments     Amount            `json:"total_payments"`
	TotalFees         Amount            `json:"total_fees"`
	TotalDeposits     Amount            `json:"total_deposits"`
	TotalWithdrawals  Amount            `json:"total_withdrawals"`
	TotalTransactions int               `json:"total_transactions"`
}

// otherMerchant keys transactions whose description yielded no merchant.
const otherMerchant = "other"

// Summarize derives a Summary purely from transactions.
func Summarize(transactions []Transaction) *Summary {
	summary := &Summary{
		TotalTransactions: len(transactions),
		Categories:        make(map[string]Amount),
	}

	for _, txn := range transactions {
		switch txn.TransactionType {
		case TransactionPurchase:
			summary.TotalPurchases = summary.TotalPurchases.Add(txn.Amount)
		case TransactionPayment:
			summary.TotalPayments = summary.TotalPayments.Add(txn.Amount.Abs())
		case TransactionFee:
			summary.TotalFees = summary.TotalFees.Add(txn.Amount)
		case TransactionDeposit:
			summary.TotalDeposits = summary.TotalDeposits.Add(txn.Amount.Abs())
		case TransactionWithdrawal:
			summary.TotalWithdrawals = summary.TotalWithdrawals.Add(txn.Amount.Abs())
		}

		merchant := txn.Merchant
		if merchant == "" {
			merchant = otherMerchant
		}
		summary.Categories[merchant] = summary.Categories[merchant].Add(txn.Amount)
	}

	return summary
}
