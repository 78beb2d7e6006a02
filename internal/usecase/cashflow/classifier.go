package cashflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// FeeCategory is the bucket a fee transaction is aggregated into
type FeeCategory string

const (
	FeeCategoryManagement  FeeCategory = "management"
	FeeCategoryPerformance FeeCategory = "performance"
	FeeCategoryOther       FeeCategory = "other"
)

// Classification is the result of classifying a window of transactions
type Classification struct {
	Flows    []domain.CashFlow
	Summary  domain.CashFlowSummary
	Fees     domain.FeeBreakdown
	Records  int // transactions inside the window, fees included
	Warnings []string
}

// Classify extracts signed cash flows and fees from a transaction history
// Logic:
//  1. Drop transactions outside [window.Start, window.End) and invalid records
//  2. Route FEE transactions to the fee aggregator (never a cash flow)
//  3. Negate WITHDRAWAL amounts; every other type keeps its stored sign
//  4. Aggregate totals, net, contributions and withdrawals
//
// The returned flows are sorted by date; the input slice is not modified
func Classify(transactions []domain.Transaction, window domain.PeriodWindow) Classification {
	result := Classification{
		Flows: make([]domain.CashFlow, 0, len(transactions)),
	}

	for i := range transactions {
		tx := transactions[i]
		if !window.Contains(tx.Date) {
			continue
		}

		if err := tx.Validate(); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped transaction %s: %v", tx.ID, err))
			continue
		}
		result.Records++

		if tx.Type == domain.TransactionTypeFee {
			addFee(&result.Fees, ClassifyFee(tx), tx.Amount.Abs())
			continue
		}

		amount := tx.Amount
		if tx.Type == domain.TransactionTypeWithdrawal {
			amount = amount.Abs().Neg()
		}

		result.Flows = append(result.Flows, domain.CashFlow{
			Date:   tx.Date,
			Amount: amount,
			Kind:   tx.Type,
		})
	}

	sort.SliceStable(result.Flows, func(i, j int) bool {
		return result.Flows[i].Date.Before(result.Flows[j].Date)
	})

	result.Summary = Summarize(result.Flows)
	return result
}

// Summarize aggregates a list of signed flows
func Summarize(flows []domain.CashFlow) domain.CashFlowSummary {
	summary := domain.CashFlowSummary{
		TotalCashFlows: decimal.Zero,
		NetCashFlows:   decimal.Zero,
		Contributions:  decimal.Zero,
		Withdrawals:    decimal.Zero,
		Count:          len(flows),
	}

	for _, f := range flows {
		summary.TotalCashFlows = summary.TotalCashFlows.Add(f.Amount.Abs())
		summary.NetCashFlows = summary.NetCashFlows.Add(f.Amount)
		if f.Amount.IsPositive() {
			summary.Contributions = summary.Contributions.Add(f.Amount)
		} else {
			summary.Withdrawals = summary.Withdrawals.Add(f.Amount.Abs())
		}
	}

	return summary
}

// ClassifyFee decides the fee category of a FEE transaction
// A fee_type metadata tag wins over the description substring rule
func ClassifyFee(tx domain.Transaction) FeeCategory {
	if tag, ok := tx.Metadata[domain.FeeTypeMetadataKey]; ok {
		switch FeeCategory(strings.ToLower(strings.TrimSpace(tag))) {
		case FeeCategoryManagement:
			return FeeCategoryManagement
		case FeeCategoryPerformance:
			return FeeCategoryPerformance
		case FeeCategoryOther:
			return FeeCategoryOther
		}
	}

	description := strings.ToLower(tx.Description)
	switch {
	case strings.Contains(description, "management"):
		return FeeCategoryManagement
	case strings.Contains(description, "performance"):
		return FeeCategoryPerformance
	default:
		return FeeCategoryOther
	}
}

func addFee(fees *domain.FeeBreakdown, category FeeCategory, amount decimal.Decimal) {
	switch category {
	case FeeCategoryManagement:
		fees.ManagementFees = fees.ManagementFees.Add(amount)
	case FeeCategoryPerformance:
		fees.PerformanceFees = fees.PerformanceFees.Add(amount)
	default:
		fees.OtherFees = fees.OtherFees.Add(amount)
	}
}
