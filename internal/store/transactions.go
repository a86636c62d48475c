package store

import (
	"context"
	"fmt"

	"github.com/safar/toy-market/internal/models"
)

// Transactions are write-once; there is no update path.

func (s *OrderStore) CreateTransaction(ctx context.Context, record *models.Transaction) (*models.Transaction, error) {
	created := &models.Transaction{}

	query := `
		INSERT INTO transactions (toy_id, toy_name, transaction_type, amount, status, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, toy_id, toy_name, transaction_type, amount, status, duration, created_at`

	err := s.db.QueryRowContext(ctx, query,
		record.ToyID, record.ToyName, record.TransactionType,
		record.Amount, record.Status, record.Duration,
	).Scan(
		&created.ID,
		&created.ToyID,
		&created.ToyName,
		&created.TransactionType,
		&created.Amount,
		&created.Status,
		&created.Duration,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return created, nil
}

func (s *OrderStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT id, toy_id, toy_name, transaction_type, amount, status, duration, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var records []models.Transaction
	for rows.Next() {
		var record models.Transaction
		err := rows.Scan(
			&record.ID,
			&record.ToyID,
			&record.ToyName,
			&record.TransactionType,
			&record.Amount,
			&record.Status,
			&record.Duration,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
