package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a short text message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	return err
}

type NopNotifier struct{}

func (NopNotifier) Send(context.Context, int64, string) error { return nil }

// DeliveryMessage is the text a driver receives when an order is ready to go out.
func DeliveryMessage(clientName, productName string, quantity int, link string) string {
	return fmt.Sprintf("New delivery ready: %d × %s for %s.\nConfirm the drop-off here: %s",
		quantity, productName, clientName, link)
}
