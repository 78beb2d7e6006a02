package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// transactionRepository implements domain.TransactionProvider
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionProvider {
	return &transactionRepository{db: db}
}

// GetCashFlows retrieves the transactions of a portfolio recorded in [start, end)
func (r *transactionRepository) GetCashFlows(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT id, portfolio_id, transaction_date, type, amount, description, metadata
		FROM portfolio_transactions
		WHERE portfolio_id = $1 AND transaction_date >= $2 AND transaction_date < $3
		ORDER BY transaction_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var txType, amountStr string
		var metadata []byte

		if err := rows.Scan(&tx.ID, &tx.PortfolioID, &tx.Date, &txType, &amountStr, &tx.Description, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount of transaction %s: %w", tx.ID, err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata of transaction %s: %w", tx.ID, err)
			}
		}

		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
