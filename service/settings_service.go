package service

import (
	"context"
	"fmt"
	"strconv"

	"rekapbot/models"
)

// settingsService implements the SettingsService interface
type settingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettingsService creates a new settings service
func NewSettingsService(uowFactory UnitOfWorkFactory) SettingsService {
	return &settingsService{uowFactory: uowFactory}
}

// ActiveChatID returns the configured active chat, or 0 when unset
func (s *settingsService) ActiveChatID(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	value, ok, err := uow.SettingRepository().Get(ctx, models.SettingActiveChatID)
	if err != nil {
		return 0, fmt.Errorf("failed to read setting: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !ok {
		return 0, nil
	}

	chatID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed active chat setting %q: %w", value, err)
	}
	return chatID, nil
}

// SetActiveChatID stores the active chat
func (s *settingsService) SetActiveChatID(ctx context.Context, chatID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SettingRepository().Set(ctx, models.SettingActiveChatID, strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
