package service

import (
	"context"
	"testing"

	"rekapbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockSettingRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingRepo := new(MockSettingRepository)

	mockUoW.SetRepositories(new(MockAccountRepository), new(MockGameRepository), new(MockTransactionRepository), mockSettingRepo)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockSettingRepo
}

func TestSettingsService_ActiveChatID(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockSettingRepo := newSettingsServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingRepo.On("Get", ctx, models.SettingActiveChatID).Return("-100123", true, nil)

	service := NewSettingsService(mockFactory)
	chatID, err := service.ActiveChatID(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(-100123), chatID)
}

func TestSettingsService_ActiveChatID_Unset(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockSettingRepo := newSettingsServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingRepo.On("Get", ctx, models.SettingActiveChatID).Return("", false, nil)

	service := NewSettingsService(mockFactory)
	chatID, err := service.ActiveChatID(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(0), chatID)
}

func TestSettingsService_SetActiveChatID(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockSettingRepo := newSettingsServiceMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingRepo.On("Set", ctx, models.SettingActiveChatID, "-100123").Return(nil)

	service := NewSettingsService(mockFactory)
	err := service.SetActiveChatID(ctx, -100123)

	require.NoError(t, err)
	mockSettingRepo.AssertExpectations(t)
}
