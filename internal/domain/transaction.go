package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of a portfolio transaction record
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeDividend   TransactionType = "DIVIDEND"
	TransactionTypeInterest   TransactionType = "INTEREST"
	TransactionTypeFee        TransactionType = "FEE"
)

// FeeTypeMetadataKey lets callers tag a fee explicitly instead of relying on its description
const FeeTypeMetadataKey = "fee_type"

// Transaction represents a raw portfolio transaction as stored by the ledger
// WITHDRAWAL amounts are stored as positive magnitudes; every other type keeps its own sign
type Transaction struct {
	ID          uuid.UUID
	PortfolioID uuid.UUID
	Date        time.Time
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Metadata    map[string]string
}

// Validate ensures the transaction can be classified
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("transaction date must be set")
	}

	switch t.Type {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeDividend,
		TransactionTypeInterest, TransactionTypeFee:
	default:
		return errors.New("transaction type must be DEPOSIT, WITHDRAWAL, DIVIDEND, INTEREST or FEE")
	}

	if t.Amount.IsZero() {
		return errors.New("transaction amount must be non-zero")
	}

	return nil
}

// CashFlow is a signed external flow: contributions positive, withdrawals negative
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
	Kind   TransactionType
}

// CashFlowSummary aggregates the flows of a period
type CashFlowSummary struct {
	TotalCashFlows decimal.Decimal `json:"total_cash_flows"` // sum of |amount|
	NetCashFlows   decimal.Decimal `json:"net_cash_flows"`   // signed sum
	Contributions  decimal.Decimal `json:"contributions"`    // sum of positive flows
	Withdrawals    decimal.Decimal `json:"withdrawals"`      // sum of |negative flows|
	Count          int             `json:"count"`
}

// FeeBreakdown splits fees by category
type FeeBreakdown struct {
	ManagementFees  decimal.Decimal `json:"management_fees"`
	PerformanceFees decimal.Decimal `json:"performance_fees"`
	OtherFees       decimal.Decimal `json:"other_fees"`
}

// Total returns the sum of every fee category
func (f FeeBreakdown) Total() decimal.Decimal {
	return f.ManagementFees.Add(f.PerformanceFees).Add(f.OtherFees)
}
