package service

import (
	"context"
	"fmt"

	"rekapbot/models"
)

// accountService implements the AccountService interface
type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{uowFactory: uowFactory}
}

// GetOrCreateByTelegramID retrieves or creates the account for a platform identity
func (s *accountService) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateByTelegram(ctx, uow.AccountRepository(), telegramID, username, firstName)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// Link binds an unlinked name-keyed account to a platform identity. The
// linking is explicit and refuses when the identity is already bound.
func (s *accountService) Link(ctx context.Context, username string, telegramID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Linked() {
		return nil, ErrAccountAlreadyLinked
	}

	existing, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if existing != nil {
		return nil, ErrIdentityAlreadyBound
	}

	if err := uow.AccountRepository().LinkTelegramID(ctx, account.ID, telegramID); err != nil {
		return nil, fmt.Errorf("failed to link account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.TelegramID = &telegramID
	return account, nil
}

// ProcessReferral links a brand-new account to its referrer. Self-referrals,
// unknown referrers and accounts that already have a referrer are ignored
// (nil referrer, no error).
func (s *accountService) ProcessReferral(ctx context.Context, telegramID int64, username, firstName string, referrerTelegramID int64) (*models.Account, error) {
	if referrerTelegramID == telegramID {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil && existing.ReferredBy != nil {
		return nil, nil
	}

	referrer, err := uow.AccountRepository().GetByTelegramID(ctx, referrerTelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referrer: %w", err)
	}
	if referrer == nil {
		return nil, nil
	}

	account := existing
	if account == nil {
		account, err = getOrCreateByTelegram(ctx, uow.AccountRepository(), telegramID, username, firstName)
		if err != nil {
			return nil, err
		}
	}

	// The new account joins the referrer's team, or forms one named after
	// the referrer
	team := referrer.Team
	if team == nil {
		team = &referrer.Username
	}
	if err := uow.AccountRepository().SetReferral(ctx, account.ID, referrer.ID, team); err != nil {
		return nil, fmt.Errorf("failed to record referral: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return referrer, nil
}

// Profile returns the account for a platform identity with its referral count
func (s *accountService) Profile(ctx context.Context, telegramID int64) (*models.Account, int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, 0, ErrAccountNotFound
	}

	referrals, err := uow.AccountRepository().CountReferrals(ctx, account.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count referrals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, referrals, nil
}

// getOrCreateByTelegram resolves a platform identity to an account,
// creating one on first interaction.
func getOrCreateByTelegram(ctx context.Context, accounts AccountRepository, telegramID int64, username, firstName string) (*models.Account, error) {
	account, err := accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	if username == "" {
		username = fmt.Sprintf("user%d", telegramID)
	}

	// A name-keyed unlinked account may already hold this username; it keeps
	// the name until an admin links it, so the new account gets a
	// disambiguated one.
	byName, err := accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if byName != nil {
		username = fmt.Sprintf("%s_%d", username, telegramID)
	}

	account = &models.Account{
		TelegramID: &telegramID,
		Username:   username,
		FirstName:  firstName,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}
