package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
}

// client is an implementation of Notifier that fans a message out to every
// configured chat.
type client struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatIDs []int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:     bot,
		chatIDs: chatIDs,
	}, nil
}

// SendMessage sends a message to every configured Telegram chat. Delivery is
// attempted for all chats even when one fails; the first error is returned.
func (c *client) SendMessage(text string) error {
	var firstErr error
	for _, chatID := range c.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := c.bot.Send(msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to send to chat %d: %w", chatID, err)
		}
	}
	return firstErr
}

// ParseChatIDs parses a comma-separated chat ID list from configuration.
func ParseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
