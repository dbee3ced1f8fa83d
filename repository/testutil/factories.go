package testutil

import (
	"rekapbot/models"
)

// CreateTestAccount creates an unlinked account keyed by recap name
func CreateTestAccount(username string) *models.Account {
	return &models.Account{
		Username:  username,
		FirstName: username,
	}
}

// CreateTestLinkedAccount creates an account bound to a Telegram identity
func CreateTestLinkedAccount(telegramID int64, username string) *models.Account {
	return &models.Account{
		TelegramID: &telegramID,
		Username:   username,
		FirstName:  username,
	}
}

// CreateTestGame creates an ongoing game with one player per team
func CreateTestGame(chatID int64) *models.Game {
	return &models.Game{
		ChatID: chatID,
		TeamK:  models.Roster{{Name: "alice", Amount: 10000}},
		TeamB:  models.Roster{{Name: "bob", Amount: 15000}},
		Status: models.GameStatusOngoing,
	}
}

// CreateTestTransaction creates a completed transaction for an account
func CreateTestTransaction(accountID int64, amount int64, txType models.TransactionType) *models.Transaction {
	return &models.Transaction{
		AccountID:   accountID,
		Amount:      amount,
		Type:        txType,
		Status:      models.TransactionStatusCompleted,
		Description: "test transaction",
	}
}
