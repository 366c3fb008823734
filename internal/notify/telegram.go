package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dayguard/internal/domain"
)

// TelegramBackend delivers notifications as plain chat messages to a single
// configured parent chat. It only ever pushes outbound alerts; it never
// polls for or routes incoming commands.
type TelegramBackend struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramBackend opens a Telegram bot API session for token and binds it
// to chatID, the parent's chat.
func NewTelegramBackend(token string, chatID int64) (*TelegramBackend, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	return &TelegramBackend{api: api, chatID: chatID}, nil
}

func (b *TelegramBackend) Name() string { return "telegram" }

func (b *TelegramBackend) Deliver(ctx context.Context, n domain.Notification) error {
	text := n.Title
	if n.Body != "" {
		text += "\n" + n.Body
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	if len(n.Actions) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for _, action := range n.Actions {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(action, action))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
