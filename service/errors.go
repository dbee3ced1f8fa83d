package service

import "errors"

// Sentinel errors returned by services. Bot handlers translate these into
// short user-facing replies; anything else is reported as a generic failure.
var (
	ErrNoOngoingGame          = errors.New("no ongoing recap game")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountAlreadyLinked   = errors.New("account already linked")
	ErrIdentityAlreadyBound   = errors.New("telegram identity already bound to another account")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrBalanceAlreadyZero     = errors.New("balance is already zero")
	ErrBalanceAlreadyRound    = errors.New("balance is already a multiple of the unit")
	ErrNotAwaitingPaymentInfo = errors.New("account is not awaiting payment info")
	ErrInvalidAmount          = errors.New("amount must be a positive number")
	ErrInvalidFee             = errors.New("fee percentage must be between 0 and 100")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionNotPending  = errors.New("transaction is not pending")
	ErrNoAmountRecognized     = errors.New("no valid amount recognized in image")
)
