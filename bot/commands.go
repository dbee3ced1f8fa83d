package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"rekapbot/models"
	"rekapbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	payload := strings.TrimSpace(msg.CommandArguments())
	if payload != "" {
		referrerID, err := strconv.ParseInt(payload, 10, 64)
		if err == nil {
			referrer, err := b.accounts.ProcessReferral(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, referrerID)
			if err != nil {
				log.WithError(err).WithField("telegram_id", msg.From.ID).Error("failed to process referral")
			} else if referrer != nil && referrer.TelegramID != nil {
				name := msg.From.FirstName
				if name == "" {
					name = msg.From.UserName
				}
				if _, err := b.messenger.SendMessage(ctx, *referrer.TelegramID, fmt.Sprintf("%s joined using your referral link!", name)); err != nil {
					log.WithError(err).Warn("could not notify referrer")
				}
			}
		}
	}

	b.reply(ctx, msg, welcomeText)
}

func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message) {
	account, referrals, err := b.accounts.Profile(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, formatProfile(account, referrals, b.api.Self.UserName))
}

func (b *Bot) handleWithdraw(ctx context.Context, msg *tgbotapi.Message) {
	amount, ok := parseUserAmount(msg.CommandArguments())
	if !ok {
		b.reply(ctx, msg, "Usage: /withdraw <amount>")
		return
	}

	account, err := b.withdrawals.Start(ctx, msg.From.ID, amount)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}

	b.reply(ctx, msg, fmt.Sprintf(
		"Withdrawal of %s requested (balance: %s).\nNow send your payment details (bank / e-wallet and account number) in one message.",
		service.FormatAmount(amount), service.FormatAmount(account.Balance)))
}

// handleWithdrawalInfo consumes the payment-details message of an account in
// the awaiting state: the held amount is debited, the request is forwarded to
// the operator, and the user gets a receipt.
func (b *Bot) handleWithdrawalInfo(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == "" {
		b.reply(ctx, msg, "Please send your payment details as text.")
		return
	}

	receipt, err := b.withdrawals.Complete(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}

	operator := b.cfg.OperatorID()
	if operator != 0 {
		b.notifyOperator(ctx, formatWithdrawalRequest(receipt, msg.From))
		if err := b.messenger.ForwardMessage(ctx, operator, msg.Chat.ID, msg.MessageID); err != nil {
			log.WithError(err).Warn("could not forward payment details to operator")
		}
	}

	b.reply(ctx, msg, fmt.Sprintf(
		"Withdrawal #%d for %s submitted. Remaining balance: %s.\nYou will be notified once it is paid out.",
		receipt.TransactionID, service.FormatAmount(receipt.Amount), service.FormatAmount(receipt.RemainingBalance)))
}

func (b *Bot) handleSettle(ctx context.Context, msg *tgbotapi.Message) {
	fee := 0.0
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			b.reply(ctx, msg, "Usage: /settle [fee percentage]")
			return
		}
		fee = parsed
	}

	result, err := b.recaps.Settle(ctx, msg.Chat.ID, fee)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}

	// The pinned tally message becomes the settlement result
	text := formatSettlement(result)
	if result.Game.MessageID != 0 {
		if err := b.messenger.UnpinMessage(ctx, msg.Chat.ID, result.Game.MessageID); err != nil {
			log.WithError(err).Debug("could not unpin tally message")
		}
		if err := b.messenger.EditMessage(ctx, msg.Chat.ID, result.Game.MessageID, text); err == nil {
			return
		}
	}
	b.reply(ctx, msg, text)
}

func (b *Bot) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	game, err := b.recaps.Cancel(ctx, msg.Chat.ID)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}

	if game.MessageID != 0 {
		if err := b.messenger.UnpinMessage(ctx, msg.Chat.ID, game.MessageID); err != nil {
			log.WithError(err).Debug("could not unpin tally message")
		}
		if err := b.messenger.DeleteMessage(ctx, msg.Chat.ID, game.MessageID); err != nil {
			log.WithError(err).Debug("could not delete tally message")
		}
	}

	b.reply(ctx, msg, "Recap cancelled. No balance was changed.")
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.reply(ctx, msg, "Usage: /balance <player name>")
		return
	}

	balance, err := b.ledger.GetBalance(ctx, name)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("%s: %s", name, service.FormatAmount(balance)))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	b.handleAdjust(ctx, msg, models.TransactionTypeManualAdd, "/add")
}

func (b *Bot) handleSubtract(ctx context.Context, msg *tgbotapi.Message) {
	b.handleAdjust(ctx, msg, models.TransactionTypeManualSubtract, "/subtract")
}

func (b *Bot) handleAdjust(ctx context.Context, msg *tgbotapi.Message, txType models.TransactionType, command string) {
	name, amount, ok := parseNameAndAmount(msg.CommandArguments())
	if !ok {
		b.reply(ctx, msg, fmt.Sprintf("Usage: %s <player name> <amount>", command))
		return
	}

	signed := amount
	if txType == models.TransactionTypeManualSubtract {
		signed = -amount
	}

	account, err := b.ledger.Adjust(ctx, name, signed, txType, fmt.Sprintf("Manual adjustment via %s", command))
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("%s now has %s.", account.Username, service.FormatAmount(account.Balance)))
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.reply(ctx, msg, "Usage: /clear <player name>")
		return
	}

	account, err := b.ledger.SetToZero(ctx, name, "Balance cleared via /clear")
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("%s's balance set to 0.", account.Username))
}

func (b *Bot) handleRound(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	name, unit := args, int64(1000)
	if n, u, ok := parseNameAndAmount(args); ok {
		name, unit = n, u
	}
	if name == "" {
		b.reply(ctx, msg, "Usage: /round <player name> [unit]")
		return
	}

	account, err := b.ledger.RoundToNearest(ctx, name, unit, "Balance rounded via /round")
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("%s's balance rounded to %s.", account.Username, service.FormatAmount(account.Balance)))
}

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	name, telegramID, ok := parseNameAndAmount(msg.CommandArguments())
	if !ok {
		b.reply(ctx, msg, "Usage: /link <player name> <telegram id>")
		return
	}

	account, err := b.accounts.Link(ctx, name, telegramID)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("%s linked to Telegram ID %d.", account.Username, telegramID))
}

func (b *Bot) handleWithdrawalPaid(ctx context.Context, msg *tgbotapi.Message) {
	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(ctx, msg, "Usage: /wdpaid <withdrawal id>")
		return
	}

	txn, err := b.withdrawals.ConfirmPaid(ctx, id)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("Withdrawal #%d marked as paid.", txn.ID))
}

func (b *Bot) handleWithdrawalReject(ctx context.Context, msg *tgbotapi.Message) {
	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(ctx, msg, "Usage: /wdreject <withdrawal id>")
		return
	}

	txn, err := b.withdrawals.Reject(ctx, id)
	if err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("Withdrawal #%d rejected and refunded.", txn.ID))
}

func (b *Bot) handleSetGroup(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.settings.SetActiveChatID(ctx, msg.Chat.ID); err != nil {
		b.replyError(ctx, msg, err)
		return
	}
	b.reply(ctx, msg, "This chat is now the active recap group.")
}

func (b *Bot) handleRecapText(ctx context.Context, msg *tgbotapi.Message) {
	parsed := service.ParseRecap(msg.Text)
	if parsed == nil || !parsed.HasEntries() {
		return
	}

	tally := service.FormatTally(parsed.TeamK.Total(), parsed.TeamB.Total())
	tallyID := b.reply(ctx, msg, tally)

	if _, err := b.recaps.RecordRecap(ctx, msg.Chat.ID, parsed, tallyID); err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("failed to record recap")
		return
	}

	if tallyID != 0 {
		b.pinIfActiveChat(ctx, msg.Chat.ID, tallyID)
	}
}

func (b *Bot) handleDepositPhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram orders photo sizes ascending; the last one is the original.
	photo := msg.Photo[len(msg.Photo)-1]

	imageURL, err := b.messenger.FileLink(ctx, photo.FileID)
	if err != nil {
		log.WithError(err).Error("failed to resolve deposit photo")
		b.reply(ctx, msg, "Could not read that image, please try again.")
		return
	}

	progressID := b.reply(ctx, msg, "Reading your receipt...")

	result, err := b.deposits.ProcessImage(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, imageURL)
	if err != nil {
		text := "Could not process the receipt, please contact the operator."
		if errors.Is(err, service.ErrNoAmountRecognized) {
			text = "No deposit amount could be read from that image. Send a clearer photo of the transfer receipt."
		} else {
			log.WithError(err).WithField("telegram_id", msg.From.ID).Error("deposit processing failed")
		}
		b.editOrReply(ctx, msg, progressID, text)
		return
	}

	b.editOrReply(ctx, msg, progressID, fmt.Sprintf(
		"Deposit of %s credited to %s. New balance: %s.",
		service.FormatAmount(result.Amount), result.Account.Username, service.FormatAmount(result.NewBalance)))

	if progressID != 0 {
		b.pinIfActiveChat(ctx, msg.Chat.ID, progressID)
	}

	b.notifyOperator(ctx, fmt.Sprintf(
		"Deposit: %s credited %s (balance %s).",
		result.Account.Username, service.FormatAmount(result.Amount), service.FormatAmount(result.NewBalance)))
}

func (b *Bot) editOrReply(ctx context.Context, msg *tgbotapi.Message, messageID int, text string) {
	if messageID != 0 {
		if err := b.messenger.EditMessage(ctx, msg.Chat.ID, messageID, text); err == nil {
			return
		}
	}
	b.reply(ctx, msg, text)
}

// replyError translates service sentinels into short user-facing replies and
// hides anything unexpected behind a generic failure message.
func (b *Bot) replyError(ctx context.Context, msg *tgbotapi.Message, err error) {
	var text string
	switch {
	case errors.Is(err, service.ErrNoOngoingGame):
		text = "There is no ongoing recap in this chat."
	case errors.Is(err, service.ErrAccountNotFound):
		text = "No account with that name exists."
	case errors.Is(err, service.ErrAccountAlreadyLinked):
		text = "That account is already linked to a Telegram identity."
	case errors.Is(err, service.ErrIdentityAlreadyBound):
		text = "That Telegram ID is already bound to another account."
	case errors.Is(err, service.ErrInsufficientBalance):
		text = "Insufficient balance for that amount."
	case errors.Is(err, service.ErrBalanceAlreadyZero):
		text = "That balance is already zero."
	case errors.Is(err, service.ErrBalanceAlreadyRound):
		text = "That balance is already round."
	case errors.Is(err, service.ErrNotAwaitingPaymentInfo):
		text = "There is no withdrawal waiting for payment details."
	case errors.Is(err, service.ErrInvalidAmount):
		text = "The amount must be a positive number."
	case errors.Is(err, service.ErrInvalidFee):
		text = "The fee must be between 0 and 100 percent."
	case errors.Is(err, service.ErrTransactionNotFound):
		text = "No withdrawal with that ID exists."
	case errors.Is(err, service.ErrTransactionNotPending):
		text = "That withdrawal is not pending."
	default:
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("command failed")
		text = "Something went wrong, please try again later."
	}
	b.reply(ctx, msg, text)
}

// parseUserAmount reads a positive whole amount, tolerating grouping
// separators ("10.000", "10,000") and a k-suffix ("5k", "2.5k").
func parseUserAmount(raw string) (int64, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 0, false
	}

	if strings.HasSuffix(raw, "k") {
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(raw, "k"), ",", "."), 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return int64(f * 1000), true
	}

	cleaned := strings.NewReplacer(".", "", ",", "").Replace(raw)
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseNameAndAmount splits "name with spaces 5000" into the name and the
// trailing amount.
func parseNameAndAmount(args string) (string, int64, bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", 0, false
	}

	amount, ok := parseUserAmount(fields[len(fields)-1])
	if !ok {
		return "", 0, false
	}
	return strings.Join(fields[:len(fields)-1], " "), amount, true
}
