package repository

import (
	"context"
	"testing"

	"rekapbot/models"
	"rekapbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unlinked account", func(t *testing.T) {
		account := testutil.CreateTestAccount("alice")
		err := repo.Create(ctx, account)
		require.NoError(t, err)
		assert.NotZero(t, account.ID)
		assert.Equal(t, int64(0), account.Balance)

		got, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.Nil(t, got.TelegramID)
		assert.False(t, got.Withdrawal.Waiting)
	})

	t.Run("linked account", func(t *testing.T) {
		account := testutil.CreateTestLinkedAccount(123, "bob")
		err := repo.Create(ctx, account)
		require.NoError(t, err)

		got, err := repo.GetByTelegramID(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "bob", got.Username)
	})

	t.Run("username lookup is case-insensitive", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("missing account returns nil", func(t *testing.T) {
		got, err := repo.GetByTelegramID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAccountRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount("carol")
	require.NoError(t, repo.Create(ctx, account))

	updated, err := repo.AddBalance(ctx, account.ID, 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), updated.Balance)

	updated, err = repo.AddBalance(ctx, account.ID, -4000)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), updated.Balance)
}

func TestAccountRepository_WithdrawalState(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestLinkedAccount(456, "dave")
	require.NoError(t, repo.Create(ctx, account))

	err := repo.SetWithdrawalState(ctx, account.ID, models.WithdrawalState{Waiting: true, Amount: 20000})
	require.NoError(t, err)

	got, err := repo.GetByTelegramID(ctx, 456)
	require.NoError(t, err)
	assert.True(t, got.Withdrawal.Waiting)
	assert.Equal(t, int64(20000), got.Withdrawal.Amount)

	err = repo.SetWithdrawalState(ctx, account.ID, models.WithdrawalState{})
	require.NoError(t, err)

	got, err = repo.GetByTelegramID(ctx, 456)
	require.NoError(t, err)
	assert.False(t, got.Withdrawal.Waiting)
}

func TestAccountRepository_LinkTelegramID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount("eve")
	require.NoError(t, repo.Create(ctx, account))

	err := repo.LinkTelegramID(ctx, account.ID, 789)
	require.NoError(t, err)

	got, err := repo.GetByTelegramID(ctx, 789)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "eve", got.Username)

	// Linking again must not rebind the identity
	err = repo.LinkTelegramID(ctx, account.ID, 790)
	assert.Error(t, err)
}

func TestAccountRepository_Referrals(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	referrer := testutil.CreateTestLinkedAccount(100, "frank")
	require.NoError(t, repo.Create(ctx, referrer))

	team := "frank"
	for i, name := range []string{"gina", "hank"} {
		referred := testutil.CreateTestLinkedAccount(int64(200+i), name)
		require.NoError(t, repo.Create(ctx, referred))
		require.NoError(t, repo.SetReferral(ctx, referred.ID, referrer.ID, &team))
	}

	count, err := repo.CountReferrals(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := repo.GetByUsername(ctx, "gina")
	require.NoError(t, err)
	require.NotNil(t, got.ReferredBy)
	assert.Equal(t, referrer.ID, *got.ReferredBy)
	require.NotNil(t, got.Team)
	assert.Equal(t, "frank", *got.Team)
}
