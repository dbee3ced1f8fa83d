package models

import (
	"time"
)

// WithdrawalState tracks the two-step withdrawal protocol for an account.
// Amount is only meaningful while Waiting is true.
type WithdrawalState struct {
	Waiting bool  `db:"withdrawal_waiting"`
	Amount  int64 `db:"withdrawal_amount"`
}

// Account represents a participant with a balance.
//
// TelegramID is nil for accounts created from a recap name alone; such
// accounts stay unlinked until an admin binds them to a platform identity.
type Account struct {
	ID            int64           `db:"id"`
	TelegramID    *int64          `db:"telegram_id"`
	Username      string          `db:"username"`
	FirstName     string          `db:"first_name"`
	Balance       int64           `db:"balance"`
	ReferredBy    *int64          `db:"referred_by"`
	Team          *string         `db:"team"`
	Withdrawal    WithdrawalState
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Linked reports whether the account is bound to a platform identity.
func (a *Account) Linked() bool {
	return a.TelegramID != nil
}
