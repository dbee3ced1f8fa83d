package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rekapbot/models"
)

// Minimum amount the OCR scan will accept as a plausible transfer.
const minDepositAmount = 10000

// depositService implements the DepositService interface
type depositService struct {
	uowFactory UnitOfWorkFactory
	ocr        OCRClient
}

// NewDepositService creates a new deposit service
func NewDepositService(uowFactory UnitOfWorkFactory, ocr OCRClient) DepositService {
	return &depositService{
		uowFactory: uowFactory,
		ocr:        ocr,
	}
}

// ProcessImage runs OCR on a transfer receipt image and credits the best
// recognized amount to the sender's balance.
func (s *depositService) ProcessImage(ctx context.Context, telegramID int64, username, firstName string, imageURL string) (*models.DepositResult, error) {
	text, err := s.ocr.RecognizeText(ctx, imageURL, "ind")
	if err != nil {
		return nil, fmt.Errorf("failed to recognize image text: %w", err)
	}

	amount := bestAmountCandidate(text)
	if amount == 0 {
		return nil, ErrNoAmountRecognized
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := getOrCreateByTelegram(ctx, uow.AccountRepository(), telegramID, username, firstName)
	if err != nil {
		return nil, err
	}

	updated, err := uow.AccountRepository().AddBalance(ctx, account.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}

	snippet := text
	if len(snippet) > 100 {
		snippet = snippet[:100]
	}
	txn := &models.Transaction{
		AccountID:   account.ID,
		Amount:      amount,
		Type:        models.TransactionTypeDeposit,
		Status:      models.TransactionStatusCompleted,
		Description: fmt.Sprintf("Deposit via OCR. Raw text snippet: %s", snippet),
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DepositResult{
		Account:    updated,
		Amount:     amount,
		NewBalance: updated.Balance,
	}, nil
}

var amountCandidatePattern = regexp.MustCompile(`[\d.,]+`)

// bestAmountCandidate scans OCR text for numeric tokens and returns the
// largest whole amount of at least minDepositAmount, or 0 when none
// qualifies. Dots are grouping separators, a comma starts the decimal part.
func bestAmountCandidate(text string) int64 {
	var best int64
	for _, token := range amountCandidatePattern.FindAllString(text, -1) {
		normalized := strings.ReplaceAll(token, ".", "")
		normalized = strings.Replace(normalized, ",", ".", 1)

		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			continue
		}
		if f != float64(int64(f)) {
			continue
		}

		n := int64(f)
		if n >= minDepositAmount && n > best {
			best = n
		}
	}
	return best
}
