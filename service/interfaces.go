package service

import (
	"context"

	"rekapbot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by its internal ID
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByTelegramID retrieves an account by its Telegram identity
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error)

	// GetByUsername retrieves an account by display name (case-insensitive exact match)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Create inserts a new account and fills in its ID and timestamps
	Create(ctx context.Context, account *models.Account) error

	// AddBalance adds delta to the account balance atomically and returns the updated account
	AddBalance(ctx context.Context, id int64, delta int64) (*models.Account, error)

	// SetBalance sets the account balance to an absolute value
	SetBalance(ctx context.Context, id int64, balance int64) error

	// SetWithdrawalState stores the withdrawal protocol state
	SetWithdrawalState(ctx context.Context, id int64, state models.WithdrawalState) error

	// LinkTelegramID binds an unlinked account to a platform identity
	LinkTelegramID(ctx context.Context, id int64, telegramID int64) error

	// SetReferral records who referred the account and its inherited team label
	SetReferral(ctx context.Context, id int64, referredBy int64, team *string) error

	// CountReferrals returns how many accounts name this one as referrer
	CountReferrals(ctx context.Context, id int64) (int, error)
}

// GameRepository defines the interface for recap game data access
type GameRepository interface {
	// GetOngoingByChat returns the ongoing game for a chat, or nil
	GetOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error)

	// LockOngoingByChat returns the ongoing game for a chat with a row lock
	// held until the surrounding transaction ends, or nil
	LockOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error)

	// UpsertOngoing replaces the rosters and message ID of the chat's ongoing
	// game, creating it if absent
	UpsertOngoing(ctx context.Context, game *models.Game) error

	// Update persists status, winner and fee of an existing game
	Update(ctx context.Context, game *models.Game) error

	// DeleteOngoingByChat removes the chat's ongoing game and returns it, or nil
	DeleteOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error)
}

// TransactionRepository defines the interface for the audit trail
type TransactionRepository interface {
	// Create inserts a new transaction record and fills in its ID
	Create(ctx context.Context, txn *models.Transaction) error

	// GetByID retrieves a transaction by ID, or nil
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)

	// UpdateStatus transitions a transaction's status
	UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error

	// GetByAccount returns the most recent transactions for an account
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Transaction, error)
}

// SettingRepository defines the interface for key/value settings
type SettingRepository interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set upserts the value for key
	Set(ctx context.Context, key string, value string) error
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	GameRepository() GameRepository
	TransactionRepository() TransactionRepository
	SettingRepository() SettingRepository
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// Messenger is the chat platform surface the core depends on
type Messenger interface {
	// SendMessage sends text to a chat and returns the new message ID
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)

	// EditMessage replaces the text of an existing message
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error

	// PinMessage pins a message in a chat
	PinMessage(ctx context.Context, chatID int64, messageID int) error

	// UnpinMessage unpins a message in a chat
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error

	// DeleteMessage deletes a message from a chat
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// ForwardMessage forwards a message to another chat
	ForwardMessage(ctx context.Context, toChatID int64, fromChatID int64, messageID int) error

	// FileLink resolves a platform file reference to a downloadable URL
	FileLink(ctx context.Context, fileID string) (string, error)
}

// OCRClient recognizes text in an image
type OCRClient interface {
	// RecognizeText returns the text recognized in the image at imageURL
	RecognizeText(ctx context.Context, imageURL string, languageHint string) (string, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetOrCreateByTelegramID retrieves the account for a platform identity,
	// creating it on first interaction
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName string) (*models.Account, error)

	// Link binds an unlinked name-keyed account to a platform identity
	Link(ctx context.Context, username string, telegramID int64) (*models.Account, error)

	// ProcessReferral links a brand-new account to its referrer and returns
	// the referrer for notification, or nil when the referral was ignored
	ProcessReferral(ctx context.Context, telegramID int64, username, firstName string, referrerTelegramID int64) (*models.Account, error)

	// Profile returns the account for a platform identity together with its
	// referral count
	Profile(ctx context.Context, telegramID int64) (*models.Account, int, error)
}

// RecapService defines the interface for recap games and settlement
type RecapService interface {
	// RecordRecap upserts the chat's ongoing game from parsed rosters and
	// stores the tally message ID for later edits
	RecordRecap(ctx context.Context, chatID int64, teams *ParsedTeams, messageID int) (*models.Game, error)

	// Settle determines the winner of the chat's ongoing game, pays out the
	// losing pot net of fee, and marks the game finished
	Settle(ctx context.Context, chatID int64, feePercentage float64) (*models.SettlementResult, error)

	// Cancel deletes the chat's ongoing game without touching any balance
	Cancel(ctx context.Context, chatID int64) (*models.Game, error)
}

// LedgerService defines the interface for balance administration
type LedgerService interface {
	// Adjust adds signedAmount to the named account's balance, creating the
	// account if absent, and records a matching transaction
	Adjust(ctx context.Context, playerName string, signedAmount int64, txType models.TransactionType, note string) (*models.Account, error)

	// SetToZero zeroes the named account's balance
	SetToZero(ctx context.Context, playerName string, note string) (*models.Account, error)

	// RoundToNearest rounds the named account's balance to the nearest
	// multiple of unit
	RoundToNearest(ctx context.Context, playerName string, unit int64, note string) (*models.Account, error)

	// GetBalance returns the named account's balance
	GetBalance(ctx context.Context, playerName string) (int64, error)
}

// WithdrawalService defines the interface for the two-step withdrawal protocol
type WithdrawalService interface {
	// Start puts the account into the awaiting-payment-info state
	Start(ctx context.Context, telegramID int64, amount int64) (*models.Account, error)

	// Complete debits the held amount, records a pending withdrawal and
	// clears the state; the caller forwards the payment-info message
	Complete(ctx context.Context, telegramID int64) (*models.WithdrawalReceipt, error)

	// ConfirmPaid marks a pending withdrawal completed
	ConfirmPaid(ctx context.Context, transactionID int64) (*models.Transaction, error)

	// Reject marks a pending withdrawal failed and refunds the amount
	Reject(ctx context.Context, transactionID int64) (*models.Transaction, error)
}

// DepositService defines the interface for the OCR deposit flow
type DepositService interface {
	// ProcessImage runs OCR on the image and credits the recognized amount
	ProcessImage(ctx context.Context, telegramID int64, username, firstName string, imageURL string) (*models.DepositResult, error)
}

// SettingsService defines the interface for bot settings
type SettingsService interface {
	// ActiveChatID returns the configured active chat, or 0 when unset
	ActiveChatID(ctx context.Context) (int64, error)

	// SetActiveChatID stores the active chat
	SetActiveChatID(ctx context.Context, chatID int64) error
}
