package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeGameWin        TransactionType = "game_win"
	TransactionTypeGameLoss       TransactionType = "game_loss"
	TransactionTypeFeeCharge      TransactionType = "fee_charge"
	TransactionTypeManualAdd      TransactionType = "manual_add"
	TransactionTypeManualSubtract TransactionType = "manual_subtract"
	TransactionTypeRounding       TransactionType = "rounding"
)

// TransactionStatus represents the settlement state of a transaction.
// Only withdrawals start pending; everything else is completed on creation.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable audit record of a single balance change.
// An account's balance always equals the sum of its transaction amounts.
type Transaction struct {
	ID            int64             `db:"id"`
	AccountID     int64             `db:"account_id"`
	Amount        int64             `db:"amount"`
	Type          TransactionType   `db:"type"`
	Status        TransactionStatus `db:"status"`
	Description   string            `db:"description"`
	RelatedGameID *int64            `db:"related_game_id"`
	CreatedAt     time.Time         `db:"created_at"`
}
