package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMessenger adapts the Telegram Bot API to the service.Messenger
// interface expected by the services.
type telegramMessenger struct {
	api *tgbotapi.BotAPI
}

func (m *telegramMessenger) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

func (m *telegramMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *telegramMessenger) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	pin := tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	}
	if _, err := m.api.Request(pin); err != nil {
		return fmt.Errorf("failed to pin message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *telegramMessenger) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	unpin := tgbotapi.UnpinChatMessageConfig{
		ChatID:    chatID,
		MessageID: messageID,
	}
	if _, err := m.api.Request(unpin); err != nil {
		return fmt.Errorf("failed to unpin message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *telegramMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := m.api.Request(del); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *telegramMessenger) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	fwd := tgbotapi.NewForward(toChatID, fromChatID, messageID)
	if _, err := m.api.Send(fwd); err != nil {
		return fmt.Errorf("failed to forward message %d from chat %d: %w", messageID, fromChatID, err)
	}
	return nil
}

func (m *telegramMessenger) FileLink(ctx context.Context, fileID string) (string, error) {
	url, err := m.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	return url, nil
}
