package repository

import (
	"context"
	"fmt"

	"rekapbot/database"
	"rekapbot/models"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `
	id, account_id, amount, type, status, description, related_game_id, created_at`

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var txn models.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Amount,
		&txn.Type,
		&txn.Status,
		&txn.Description,
		&txn.RelatedGameID,
		&txn.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Create inserts a new transaction record and fills in its ID
func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.Status == "" {
		txn.Status = models.TransactionStatusCompleted
	}

	query := `
		INSERT INTO transactions (account_id, amount, type, status, description, related_game_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.AccountID,
		txn.Amount,
		txn.Type,
		txn.Status,
		txn.Description,
		txn.RelatedGameID,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction for account %d: %w", txn.AccountID, err)
	}
	return nil
}

// GetByID retrieves a transaction by ID, or nil
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return txn, nil
}

// UpdateStatus transitions a transaction's status
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}
	return nil
}

// GetByAccount returns the most recent transactions for an account
func (r *TransactionRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
