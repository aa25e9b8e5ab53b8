package service

import (
	"context"
	"fmt"
	"time"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultNotifyTimeout = 15 * time.Second

// Dispatcher turns completion outcomes into at most two outbound messages
// and a live balance push. It runs on a detached context: the ledger result
// is already durable when it is invoked, and a dropped message only costs a
// confirmation the user can re-query. One attempt per message, no retries.
type Dispatcher struct {
	sender  MessageSender
	pub     BalancePublisher
	timeout time.Duration
}

func NewDispatcher(sender MessageSender, pub BalancePublisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Dispatcher{
		sender:  sender,
		pub:     pub,
		timeout: timeout,
	}
}

func (d *Dispatcher) TaskCredited(payee *model.Account, taskType string, amount decimal.Decimal) {
	text := fmt.Sprintf(
		"✅ <b>Task completed!</b>\n\n"+
			"Task: %s\n"+
			"Earned: <b>+%s ETB</b>\n"+
			"💰 Balance: <b>%s ETB</b>",
		taskType, amount.StringFixed(2), payee.Balance.StringFixed(2))

	go d.deliver(payee.TelegramID, text)

	if d.pub != nil {
		d.pub.PublishBalance(payee.TelegramID, payee.Balance)
	}
}

func (d *Dispatcher) BonusCredited(referrer *model.Account, bonus decimal.Decimal, payeeID int64) {
	text := fmt.Sprintf(
		"👥 <b>Referral bonus!</b>\n\n"+
			"A user you invited completed a task.\n"+
			"Bonus: <b>+%s ETB</b>\n"+
			"💰 Balance: <b>%s ETB</b>",
		bonus.StringFixed(2), referrer.Balance.StringFixed(2))

	go d.deliver(referrer.TelegramID, text)

	if d.pub != nil {
		d.pub.PublishBalance(referrer.TelegramID, referrer.Balance)
	}
}

func (d *Dispatcher) deliver(telegramID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if !d.sender.Send(ctx, telegramID, text, nil) {
		logger.Logger().Warn("notification not delivered",
			zap.Int64("telegram_id", telegramID))
	}
}
