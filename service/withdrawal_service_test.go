package service

import (
	"context"
	"testing"

	"rekapbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWithdrawalServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockTransactionRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockAccountRepo, new(MockGameRepository), mockTxnRepo, new(MockSettingRepository))
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockAccountRepo, mockTxnRepo
}

func TestWithdrawalService_Start(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _ := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123)).Return(&models.Account{ID: 1, Balance: 50000}, nil)
	mockAccountRepo.On("SetWithdrawalState", ctx, int64(1), models.WithdrawalState{Waiting: true, Amount: 20000}).Return(nil)

	service := NewWithdrawalService(mockFactory)
	account, err := service.Start(ctx, 123, 20000)

	require.NoError(t, err)
	assert.True(t, account.Withdrawal.Waiting)
	assert.Equal(t, int64(20000), account.Withdrawal.Amount)
	// The balance is held, not debited, until payment info arrives
	assert.Equal(t, int64(50000), account.Balance)

	mockAccountRepo.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestWithdrawalService_Start_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _ := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123)).Return(&models.Account{ID: 1, Balance: 5000}, nil)

	service := NewWithdrawalService(mockFactory)
	_, err := service.Start(ctx, 123, 20000)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	mockAccountRepo.AssertNotCalled(t, "SetWithdrawalState", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestWithdrawalService_Start_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)

	service := NewWithdrawalService(mockFactory)
	for _, amount := range []int64{0, -100} {
		_, err := service.Start(ctx, 123, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	mockFactory.AssertNotCalled(t, "Create")
}

func TestWithdrawalService_Complete(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockTxnRepo := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	waiting := &models.Account{
		ID:         1,
		Balance:    50000,
		Withdrawal: models.WithdrawalState{Waiting: true, Amount: 20000},
	}
	mockAccountRepo.On("GetByTelegramID", ctx, int64(123)).Return(waiting, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(-20000)).Return(&models.Account{ID: 1, Balance: 30000}, nil)
	mockAccountRepo.On("SetWithdrawalState", ctx, int64(1), models.WithdrawalState{}).Return(nil)

	mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Amount == -20000 &&
			txn.Type == models.TransactionTypeWithdrawal &&
			txn.Status == models.TransactionStatusPending
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Transaction).ID = 77
	})

	service := NewWithdrawalService(mockFactory)
	receipt, err := service.Complete(ctx, 123)

	require.NoError(t, err)
	assert.Equal(t, int64(20000), receipt.Amount)
	assert.Equal(t, int64(30000), receipt.RemainingBalance)
	assert.Equal(t, int64(77), receipt.TransactionID)

	mockAccountRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestWithdrawalService_Complete_NotWaiting(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockTxnRepo := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123)).Return(&models.Account{ID: 1, Balance: 50000}, nil)

	service := NewWithdrawalService(mockFactory)
	_, err := service.Complete(ctx, 123)

	assert.ErrorIs(t, err, ErrNotAwaitingPaymentInfo)
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWithdrawalService_ConfirmPaid(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockTxnRepo := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	pending := &models.Transaction{
		ID:        77,
		AccountID: 1,
		Amount:    -20000,
		Type:      models.TransactionTypeWithdrawal,
		Status:    models.TransactionStatusPending,
	}
	mockTxnRepo.On("GetByID", ctx, int64(77)).Return(pending, nil)
	mockTxnRepo.On("UpdateStatus", ctx, int64(77), models.TransactionStatusCompleted).Return(nil)

	service := NewWithdrawalService(mockFactory)
	txn, err := service.ConfirmPaid(ctx, 77)

	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	// Confirming never touches the balance; it was debited at completion
	mockAccountRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertExpectations(t)
}

func TestWithdrawalService_Reject_RefundsAmount(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockTxnRepo := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	pending := &models.Transaction{
		ID:        77,
		AccountID: 1,
		Amount:    -20000,
		Type:      models.TransactionTypeWithdrawal,
		Status:    models.TransactionStatusPending,
	}
	mockTxnRepo.On("GetByID", ctx, int64(77)).Return(pending, nil)
	mockTxnRepo.On("UpdateStatus", ctx, int64(77), models.TransactionStatusFailed).Return(nil)

	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(20000)).Return(&models.Account{ID: 1, Balance: 50000}, nil)
	mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Amount == 20000 &&
			txn.Type == models.TransactionTypeManualAdd &&
			txn.Status == models.TransactionStatusCompleted
	})).Return(nil)

	service := NewWithdrawalService(mockFactory)
	txn, err := service.Reject(ctx, 77)

	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, txn.Status)

	mockAccountRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestWithdrawalService_ConfirmPaid_WrongTransaction(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockTxnRepo := newWithdrawalServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	service := NewWithdrawalService(mockFactory)

	// Unknown ID
	mockTxnRepo.On("GetByID", ctx, int64(1)).Return(nil, nil)
	_, err := service.ConfirmPaid(ctx, 1)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	// Not a withdrawal
	mockTxnRepo.On("GetByID", ctx, int64(2)).Return(&models.Transaction{
		ID: 2, Type: models.TransactionTypeDeposit, Status: models.TransactionStatusPending,
	}, nil)
	_, err = service.ConfirmPaid(ctx, 2)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	// Already settled
	mockTxnRepo.On("GetByID", ctx, int64(3)).Return(&models.Transaction{
		ID: 3, Type: models.TransactionTypeWithdrawal, Status: models.TransactionStatusCompleted,
	}, nil)
	_, err = service.ConfirmPaid(ctx, 3)
	assert.ErrorIs(t, err, ErrTransactionNotPending)
}
