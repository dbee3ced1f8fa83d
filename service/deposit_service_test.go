package service

import (
	"context"
	"errors"
	"testing"

	"rekapbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDepositService_ProcessImage(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockOCR := new(MockOCRClient)

	mockUoW.SetRepositories(mockAccountRepo, new(MockGameRepository), mockTxnRepo, new(MockSettingRepository))
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockOCR.On("RecognizeText", ctx, "https://files.example/receipt.jpg", "ind").
		Return("Transfer berhasil\nRp 150.000\nRef 2025-08-31", nil)

	telegramID := int64(123)
	account := &models.Account{ID: 1, TelegramID: &telegramID, Username: "alice"}
	mockAccountRepo.On("GetByTelegramID", ctx, telegramID).Return(account, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(150000)).Return(&models.Account{ID: 1, Balance: 150000}, nil)

	mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Amount == 150000 &&
			txn.Type == models.TransactionTypeDeposit &&
			txn.Status == models.TransactionStatusCompleted
	})).Return(nil)

	service := NewDepositService(mockFactory, mockOCR)
	result, err := service.ProcessImage(ctx, telegramID, "alice", "Alice", "https://files.example/receipt.jpg")

	require.NoError(t, err)
	assert.Equal(t, int64(150000), result.Amount)
	assert.Equal(t, int64(150000), result.NewBalance)

	mockOCR.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestDepositService_ProcessImage_NoAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockOCR := new(MockOCRClient)
	mockOCR.On("RecognizeText", ctx, "https://files.example/blurry.jpg", "ind").
		Return("no numbers here, just 5.000 pocket change", nil)

	service := NewDepositService(mockFactory, mockOCR)
	_, err := service.ProcessImage(ctx, 123, "alice", "Alice", "https://files.example/blurry.jpg")

	assert.ErrorIs(t, err, ErrNoAmountRecognized)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestDepositService_ProcessImage_OCRFailure(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockOCR := new(MockOCRClient)
	mockOCR.On("RecognizeText", ctx, "https://files.example/receipt.jpg", "ind").
		Return("", errors.New("service unavailable"))

	service := NewDepositService(mockFactory, mockOCR)
	_, err := service.ProcessImage(ctx, 123, "alice", "Alice", "https://files.example/receipt.jpg")

	assert.Error(t, err)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBestAmountCandidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"grouped amount", "Rp 150.000 berhasil", 150000},
		{"largest wins", "Ref 20.000 total 150.000 fee 2.500", 150000},
		{"below minimum ignored", "saldo 5.000", 0},
		{"decimal comma rejected when fractional", "Rp 150.000,50 tercatat 120.000", 120000},
		{"plain digits", "transfer 75000 sukses", 75000},
		{"no digits", "tidak ada angka", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestAmountCandidate(tt.text))
		})
	}
}
