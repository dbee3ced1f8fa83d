package service

import (
	"context"
	"fmt"

	"rekapbot/models"
)

// withdrawalService implements the WithdrawalService interface
type withdrawalService struct {
	uowFactory UnitOfWorkFactory
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(uowFactory UnitOfWorkFactory) WithdrawalService {
	return &withdrawalService{uowFactory: uowFactory}
}

// Start validates the requested amount against the current balance and puts
// the account into the awaiting-payment-info state. The balance is not
// debited until the payment info arrives.
func (s *withdrawalService) Start(ctx context.Context, telegramID int64, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	state := models.WithdrawalState{Waiting: true, Amount: amount}
	if err := uow.AccountRepository().SetWithdrawalState(ctx, account.ID, state); err != nil {
		return nil, fmt.Errorf("failed to store withdrawal state: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Withdrawal = state
	return account, nil
}

// Complete debits the held amount, records the withdrawal as pending for
// operator confirmation, and clears the protocol state.
func (s *withdrawalService) Complete(ctx context.Context, telegramID int64) (*models.WithdrawalReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if !account.Withdrawal.Waiting {
		return nil, ErrNotAwaitingPaymentInfo
	}

	amount := account.Withdrawal.Amount

	updated, err := uow.AccountRepository().AddBalance(ctx, account.ID, -amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	txn := &models.Transaction{
		AccountID:   account.ID,
		Amount:      -amount,
		Type:        models.TransactionTypeWithdrawal,
		Status:      models.TransactionStatusPending,
		Description: "Withdrawal request forwarded to operator",
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	if err := uow.AccountRepository().SetWithdrawalState(ctx, account.ID, models.WithdrawalState{}); err != nil {
		return nil, fmt.Errorf("failed to clear withdrawal state: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WithdrawalReceipt{
		Account:          updated,
		Amount:           amount,
		RemainingBalance: updated.Balance,
		TransactionID:    txn.ID,
	}, nil
}

// ConfirmPaid marks a pending withdrawal completed after the operator has
// paid out.
func (s *withdrawalService) ConfirmPaid(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := s.pendingWithdrawal(ctx, uow, transactionID)
	if err != nil {
		return nil, err
	}

	if err := uow.TransactionRepository().UpdateStatus(ctx, txn.ID, models.TransactionStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete withdrawal: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	txn.Status = models.TransactionStatusCompleted
	return txn, nil
}

// Reject marks a pending withdrawal failed and refunds the held amount with
// a paired transaction, so the balance stays equal to the transaction sum.
func (s *withdrawalService) Reject(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := s.pendingWithdrawal(ctx, uow, transactionID)
	if err != nil {
		return nil, err
	}

	if err := uow.TransactionRepository().UpdateStatus(ctx, txn.ID, models.TransactionStatusFailed); err != nil {
		return nil, fmt.Errorf("failed to fail withdrawal: %w", err)
	}

	refund := -txn.Amount
	if _, err := uow.AccountRepository().AddBalance(ctx, txn.AccountID, refund); err != nil {
		return nil, fmt.Errorf("failed to refund balance: %w", err)
	}

	refundTxn := &models.Transaction{
		AccountID:   txn.AccountID,
		Amount:      refund,
		Type:        models.TransactionTypeManualAdd,
		Status:      models.TransactionStatusCompleted,
		Description: fmt.Sprintf("Refund of rejected withdrawal #%d", txn.ID),
	}
	if err := uow.TransactionRepository().Create(ctx, refundTxn); err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	txn.Status = models.TransactionStatusFailed
	return txn, nil
}

func (s *withdrawalService) pendingWithdrawal(ctx context.Context, uow UnitOfWork, transactionID int64) (*models.Transaction, error) {
	txn, err := uow.TransactionRepository().GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	if txn == nil || txn.Type != models.TransactionTypeWithdrawal {
		return nil, ErrTransactionNotFound
	}
	if txn.Status != models.TransactionStatusPending {
		return nil, ErrTransactionNotPending
	}
	return txn, nil
}
