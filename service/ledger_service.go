package service

import (
	"context"
	"fmt"

	"rekapbot/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{uowFactory: uowFactory}
}

// Adjust adds signedAmount to the named account's balance, creating the
// account if absent, and records the matching transaction atomically.
func (s *ledgerService) Adjust(ctx context.Context, playerName string, signedAmount int64, txType models.TransactionType, note string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := resolveOrCreateByName(ctx, uow.AccountRepository(), playerName)
	if err != nil {
		return nil, err
	}

	updated, err := uow.AccountRepository().AddBalance(ctx, account.ID, signedAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	txn := &models.Transaction{
		AccountID:   account.ID,
		Amount:      signedAmount,
		Type:        txType,
		Status:      models.TransactionStatusCompleted,
		Description: note,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated, nil
}

// SetToZero zeroes the named account's balance, recording the negated
// delta as a manual subtraction.
func (s *ledgerService) SetToZero(ctx context.Context, playerName string, note string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Balance == 0 {
		return nil, ErrBalanceAlreadyZero
	}

	delta := -account.Balance
	if err := uow.AccountRepository().SetBalance(ctx, account.ID, 0); err != nil {
		return nil, fmt.Errorf("failed to zero balance: %w", err)
	}

	txn := &models.Transaction{
		AccountID:   account.ID,
		Amount:      delta,
		Type:        models.TransactionTypeManualSubtract,
		Status:      models.TransactionStatusCompleted,
		Description: note,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record zeroing: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Balance = 0
	return account, nil
}

// RoundToNearest rounds the named account's balance to the nearest multiple
// of unit, recording the delta as a rounding transaction.
func (s *ledgerService) RoundToNearest(ctx context.Context, playerName string, unit int64, note string) (*models.Account, error) {
	if unit <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	rounded := roundToMultiple(account.Balance, unit)
	delta := rounded - account.Balance
	if delta == 0 {
		return nil, ErrBalanceAlreadyRound
	}

	if err := uow.AccountRepository().SetBalance(ctx, account.ID, rounded); err != nil {
		return nil, fmt.Errorf("failed to round balance: %w", err)
	}

	txn := &models.Transaction{
		AccountID:   account.ID,
		Amount:      delta,
		Type:        models.TransactionTypeRounding,
		Status:      models.TransactionStatusCompleted,
		Description: note,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record rounding: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Balance = rounded
	return account, nil
}

// GetBalance returns the named account's balance
func (s *ledgerService) GetBalance(ctx context.Context, playerName string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, playerName)
	if err != nil {
		return 0, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return 0, ErrAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account.Balance, nil
}

// roundToMultiple rounds n to the nearest multiple of unit, halves away
// from zero.
func roundToMultiple(n, unit int64) int64 {
	if n >= 0 {
		return (n + unit/2) / unit * unit
	}
	return -((-n + unit/2) / unit * unit)
}
