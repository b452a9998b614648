package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dukerupert/choreboard/internal/model"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram messages users that linked a chat id.
type Telegram struct {
	bot telegramSender
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{bot: api}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, user model.User, msg Message) error {
	if user.TelegramChatID == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := tgbotapi.NewMessage(*user.TelegramChatID, fmt.Sprintf("*%s*\n%s",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, msg.Title),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, msg.Body)))
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(m); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
