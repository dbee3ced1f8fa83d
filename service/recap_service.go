package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"rekapbot/models"
)

// recapService implements the RecapService interface
type recapService struct {
	uowFactory UnitOfWorkFactory
}

// NewRecapService creates a new recap service
func NewRecapService(uowFactory UnitOfWorkFactory) RecapService {
	return &recapService{uowFactory: uowFactory}
}

// RecordRecap upserts the chat's ongoing game from parsed rosters
func (s *recapService) RecordRecap(ctx context.Context, chatID int64, teams *ParsedTeams, messageID int) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game := &models.Game{
		ChatID:    chatID,
		TeamK:     teams.TeamK,
		TeamB:     teams.TeamB,
		Status:    models.GameStatusOngoing,
		MessageID: messageID,
	}

	if err := uow.GameRepository().UpsertOngoing(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to upsert ongoing game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return game, nil
}

// Settle resolves the chat's ongoing game. The whole settlement runs in a
// single transaction: the game row is locked, every winner and loser update
// plus its audit record either all commit or none do.
func (s *recapService) Settle(ctx context.Context, chatID int64, feePercentage float64) (*models.SettlementResult, error) {
	if math.IsNaN(feePercentage) || feePercentage < 0 || feePercentage > 100 {
		return nil, ErrInvalidFee
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().LockOngoingByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ongoing game: %w", err)
	}
	if game == nil {
		return nil, ErrNoOngoingGame
	}

	totalK := game.TeamK.Total()
	totalB := game.TeamB.Total()

	game.Status = models.GameStatusFinished
	game.FeePercentage = feePercentage

	if totalK == totalB {
		// Draw: no winner, no ledger effect
		if err := uow.GameRepository().Update(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to finish drawn game: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &models.SettlementResult{Game: game, Draw: true}, nil
	}

	winner := models.TeamK
	if totalB > totalK {
		winner = models.TeamB
	}
	winning := game.RosterFor(winner)
	losing := game.RosterFor(winner.Opposing())

	// The losing team's total stake is the prize; winners split it in
	// proportion to their own stake.
	totalPot := losing.Total()
	feeAmount := int64(math.Round(float64(totalPot) * feePercentage / 100))
	potAfterFee := totalPot - feeAmount

	stakes := make([]int64, len(winning))
	for i, entry := range winning {
		stakes[i] = entry.Amount
	}
	payouts := splitProportionally(potAfterFee, stakes)

	result := &models.SettlementResult{
		Game:        game,
		Winner:      winner,
		TotalPot:    totalPot,
		FeeAmount:   feeAmount,
		PotAfterFee: potAfterFee,
	}

	for i, entry := range winning {
		account, err := resolveOrCreateByName(ctx, uow.AccountRepository(), entry.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve winner %q: %w", entry.Name, err)
		}

		updated, err := uow.AccountRepository().AddBalance(ctx, account.ID, payouts[i])
		if err != nil {
			return nil, fmt.Errorf("failed to credit winner %q: %w", entry.Name, err)
		}

		txn := &models.Transaction{
			AccountID:     account.ID,
			Amount:        payouts[i],
			Type:          models.TransactionTypeGameWin,
			Status:        models.TransactionStatusCompleted,
			Description:   fmt.Sprintf("Win from game #%d", game.ID),
			RelatedGameID: &game.ID,
		}
		if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to record win for %q: %w", entry.Name, err)
		}

		result.Payouts = append(result.Payouts, models.PayoutLine{
			Name:       entry.Name,
			Stake:      entry.Amount,
			Payout:     payouts[i],
			NewBalance: updated.Balance,
		})
	}

	for _, entry := range losing {
		account, err := resolveOrCreateByName(ctx, uow.AccountRepository(), entry.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve loser %q: %w", entry.Name, err)
		}

		// A loser always loses exactly their stake
		if _, err := uow.AccountRepository().AddBalance(ctx, account.ID, -entry.Amount); err != nil {
			return nil, fmt.Errorf("failed to debit loser %q: %w", entry.Name, err)
		}

		txn := &models.Transaction{
			AccountID:     account.ID,
			Amount:        -entry.Amount,
			Type:          models.TransactionTypeGameLoss,
			Status:        models.TransactionStatusCompleted,
			Description:   fmt.Sprintf("Loss from game #%d", game.ID),
			RelatedGameID: &game.ID,
		}
		if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to record loss for %q: %w", entry.Name, err)
		}
	}

	game.Winner = &winner
	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to finish game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// Cancel deletes the chat's ongoing game. Stakes are only charged at
// settlement, so cancellation never touches a balance.
func (s *recapService) Cancel(ctx context.Context, chatID int64) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().DeleteOngoingByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete ongoing game: %w", err)
	}
	if game == nil {
		return nil, ErrNoOngoingGame
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return game, nil
}

// splitProportionally divides pot between stakes, floor-dividing each share
// and assigning the leftover units one-by-one by largest remainder, earlier
// stakes first on ties. The shares always sum to exactly pot.
func splitProportionally(pot int64, stakes []int64) []int64 {
	shares := make([]int64, len(stakes))
	if pot == 0 || len(stakes) == 0 {
		return shares
	}

	var total int64
	for _, s := range stakes {
		total += s
	}

	remainders := make([]int64, len(stakes))
	var assigned int64
	for i, s := range stakes {
		shares[i] = pot * s / total
		remainders[i] = pot * s % total
		assigned += shares[i]
	}

	order := make([]int, len(stakes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	leftover := pot - assigned
	for i := int64(0); i < leftover; i++ {
		shares[order[i]]++
	}

	return shares
}

// resolveOrCreateByName resolves a recap name to an account. Unknown names
// create an unlinked account; binding it to a platform identity is a
// separate explicit admin step.
func resolveOrCreateByName(ctx context.Context, accounts AccountRepository, name string) (*models.Account, error) {
	account, err := accounts.GetByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account by name: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account = &models.Account{
		Username:  name,
		FirstName: name,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account for %q: %w", name, err)
	}
	return account, nil
}
