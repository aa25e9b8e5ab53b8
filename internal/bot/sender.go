package bot

import (
	"context"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender adapts the Telegram client to the messaging boundary the ledger
// side consumes. It reports delivery instead of returning errors; the
// transport's own HTTP timeout bounds the call (ctx is accepted for the
// contract, tgbotapi has no per-call context support).
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

func (s *Sender) Send(_ context.Context, telegramID int64, text string, markup *model.Markup) bool {
	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = toKeyboard(markup)
	}

	if _, err := s.api.Send(msg); err != nil {
		logger.Logger().Warn("telegram send failed",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		return false
	}
	return true
}

func toKeyboard(markup *model.Markup) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(markup.Rows))
	for _, row := range markup.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.WebAppURL != "" {
				buttons = append(buttons, tgbotapi.InlineKeyboardButton{
					Text:   btn.Text,
					WebApp: &tgbotapi.WebAppInfo{URL: btn.WebAppURL},
				})
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
