package bot

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"rekapbot/config"
	"rekapbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wires Telegram updates to the services.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.Config
	messenger   service.Messenger
	accounts    service.AccountService
	recaps      service.RecapService
	ledger      service.LedgerService
	withdrawals service.WithdrawalService
	deposits    service.DepositService
	settings    service.SettingsService

	shutdown chan struct{}
}

// New creates the bot and connects to Telegram.
func New(cfg *config.Config, accounts service.AccountService, recaps service.RecapService, ledger service.LedgerService, withdrawals service.WithdrawalService, deposits service.DepositService, settings service.SettingsService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		messenger:   &telegramMessenger{api: api},
		accounts:    accounts,
		recaps:      recaps,
		ledger:      ledger,
		withdrawals: withdrawals,
		deposits:    deposits,
		settings:    settings,
		shutdown:    make(chan struct{}),
	}, nil
}

// Messenger returns the chat platform adapter backed by this bot's session.
func (b *Bot) Messenger() service.Messenger {
	return b.messenger
}

// Run consumes updates until the context is cancelled. Each update is
// handled as an independent task.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.WithField("username", b.api.Self.UserName).Info("bot is running")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			close(b.shutdown)
			return
		case update, ok := <-updates:
			if !ok {
				close(b.shutdown)
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Done is closed once the update loop has stopped.
func (b *Bot) Done() <-chan struct{} {
	return b.shutdown
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("recovered from panic in update handler")
		}
	}()

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	account, err := b.accounts.GetOrCreateByTelegramID(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		log.WithError(err).WithField("telegram_id", msg.From.ID).Error("failed to resolve account")
		return
	}

	// Withdrawal interception: while an account awaits payment info its next
	// message is consumed entirely by the withdrawal completion handler and
	// never reaches command or recap dispatch.
	if account.Withdrawal.Waiting {
		b.handleWithdrawalInfo(ctx, msg)
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0 && !strings.HasPrefix(msg.Caption, "/"):
		b.handleDepositPhoto(ctx, msg)
	case msg.Text != "":
		b.handleRecapText(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "profile":
		b.handleProfile(ctx, msg)
	case "withdraw":
		b.handleWithdraw(ctx, msg)
	case "settle":
		b.handleSettle(ctx, msg)
	case "cancel":
		b.handleCancel(ctx, msg)

	// Admin commands; silently ignored for everyone else
	case "balance":
		b.adminOnly(msg, b.handleBalance)(ctx, msg)
	case "add":
		b.adminOnly(msg, b.handleAdd)(ctx, msg)
	case "subtract":
		b.adminOnly(msg, b.handleSubtract)(ctx, msg)
	case "clear":
		b.adminOnly(msg, b.handleClear)(ctx, msg)
	case "round":
		b.adminOnly(msg, b.handleRound)(ctx, msg)
	case "link":
		b.adminOnly(msg, b.handleLink)(ctx, msg)
	case "wdpaid":
		b.adminOnly(msg, b.handleWithdrawalPaid)(ctx, msg)
	case "wdreject":
		b.adminOnly(msg, b.handleWithdrawalReject)(ctx, msg)
	case "setgroup":
		b.adminOnly(msg, b.handleSetGroup)(ctx, msg)
	}
}

type commandHandler func(ctx context.Context, msg *tgbotapi.Message)

func (b *Bot) adminOnly(msg *tgbotapi.Message, handler commandHandler) commandHandler {
	if b.cfg.IsAdmin(msg.From.ID) {
		return handler
	}
	return func(context.Context, *tgbotapi.Message) {}
}

// reply sends text to the chat of msg, logging rather than propagating
// failures; a lost reply must not abort handling.
func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) int {
	id, err := b.messenger.SendMessage(ctx, msg.Chat.ID, text)
	if err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("failed to send reply")
	}
	return id
}

// notifyOperator sends text to the primary admin, if one is configured.
func (b *Bot) notifyOperator(ctx context.Context, text string) {
	operator := b.cfg.OperatorID()
	if operator == 0 {
		log.Warn("no operator configured for notification")
		return
	}
	if _, err := b.messenger.SendMessage(ctx, operator, text); err != nil {
		log.WithError(err).Error("failed to notify operator")
	}
}

// pinIfActiveChat pins messageID when chatID is the configured active chat.
func (b *Bot) pinIfActiveChat(ctx context.Context, chatID int64, messageID int) {
	activeChat, err := b.settings.ActiveChatID(ctx)
	if err != nil {
		log.WithError(err).Error("failed to read active chat setting")
		return
	}
	if activeChat != chatID {
		return
	}
	if err := b.messenger.PinMessage(ctx, chatID, messageID); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("could not pin message")
	}
}
