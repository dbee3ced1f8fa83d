package repository

import (
	"context"
	"fmt"

	"rekapbot/database"
	"rekapbot/models"
	"rekapbot/service"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, telegram_id, username, first_name, balance, referred_by, team,
	withdrawal_waiting, withdrawal_amount, created_at, updated_at`

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.TelegramID,
		&account.Username,
		&account.FirstName,
		&account.Balance,
		&account.ReferredBy,
		&account.Team,
		&account.Withdrawal.Waiting,
		&account.Withdrawal.Amount,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its internal ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByTelegramID retrieves an account by its Telegram identity
func (r *AccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE telegram_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, telegramID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by telegram ID %d: %w", telegramID, err)
	}
	return account, nil
}

// GetByUsername retrieves an account by display name, case-insensitively
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1)`

	account, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by username %q: %w", username, err)
	}
	return account, nil
}

// Create inserts a new account and fills in its ID and timestamps
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (telegram_id, username, first_name, referred_by, team)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, balance, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.TelegramID,
		account.Username,
		account.FirstName,
		account.ReferredBy,
		account.Team,
	).Scan(&account.ID, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account %q: %w", account.Username, err)
	}
	return nil
}

// AddBalance adds delta to the account balance atomically and returns the
// updated account
func (r *AccountRepository) AddBalance(ctx context.Context, id int64, delta int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING` + accountColumns + `
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, delta, id))
	if err != nil {
		return nil, fmt.Errorf("failed to add balance for account %d: %w", id, err)
	}
	if account == nil {
		return nil, service.ErrAccountNotFound
	}
	return account, nil
}

// SetBalance sets the account balance to an absolute value
func (r *AccountRepository) SetBalance(ctx context.Context, id int64, balance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to set balance for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// SetWithdrawalState stores the withdrawal protocol state
func (r *AccountRepository) SetWithdrawalState(ctx context.Context, id int64, state models.WithdrawalState) error {
	query := `
		UPDATE accounts
		SET withdrawal_waiting = $1, withdrawal_amount = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, state.Waiting, state.Amount, id)
	if err != nil {
		return fmt.Errorf("failed to set withdrawal state for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// LinkTelegramID binds an unlinked account to a platform identity
func (r *AccountRepository) LinkTelegramID(ctx context.Context, id int64, telegramID int64) error {
	query := `
		UPDATE accounts
		SET telegram_id = $1, updated_at = NOW()
		WHERE id = $2 AND telegram_id IS NULL
	`

	result, err := r.q.Exec(ctx, query, telegramID, id)
	if err != nil {
		return fmt.Errorf("failed to link account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// SetReferral records who referred the account and its inherited team label
func (r *AccountRepository) SetReferral(ctx context.Context, id int64, referredBy int64, team *string) error {
	query := `
		UPDATE accounts
		SET referred_by = $1, team = COALESCE(team, $2), updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, referredBy, team, id)
	if err != nil {
		return fmt.Errorf("failed to set referral for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// CountReferrals returns how many accounts name this one as referrer
func (r *AccountRepository) CountReferrals(ctx context.Context, id int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE referred_by = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count referrals for account %d: %w", id, err)
	}
	return count, nil
}
