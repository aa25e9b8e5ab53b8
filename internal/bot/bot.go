package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/service"
	"gtask_miniapp/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const minWithdrawalETB = "50.00"

// NewAPI builds the Telegram client with a bounded HTTP timeout so a hung
// transport call cannot stall a send forever.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return api, nil
}

// Bot handles the command surface: /start registration (with an optional
// referral payload), balance and invite queries, and the admin broadcast.
type Bot struct {
	api         *tgbotapi.BotAPI
	sender      *Sender
	accounts    service.AccountServiceI
	broadcaster Broadcaster
	adminID     int64
	miniAppURL  string
}

// Broadcaster is the slice of the broadcast service the bot needs.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) (sent int, failed int, err error)
}

func New(api *tgbotapi.BotAPI, sender *Sender, accounts service.AccountServiceI, broadcaster Broadcaster, adminID int64, miniAppURL string) *Bot {
	return &Bot{
		api:         api,
		sender:      sender,
		accounts:    accounts,
		broadcaster: broadcaster,
		adminID:     adminID,
		miniAppURL:  miniAppURL,
	}
}

func (b *Bot) Run(ctx context.Context) {
	log := logger.Logger()
	log.Info("bot polling started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "help":
		b.handleHelp(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "invite":
		b.handleInvite(ctx, msg)
	case "withdraw":
		b.handleWithdraw(ctx, msg)
	case "broadcast":
		b.handleBroadcast(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Logger()
	userID := msg.From.ID

	var referrerID *int64
	if payload := strings.TrimSpace(msg.CommandArguments()); payload != "" {
		if id, err := strconv.ParseInt(payload, 10, 64); err == nil && id > 0 {
			referrerID = &id
		}
	}

	_, err := b.accounts.Register(ctx, userID, msg.From.UserName, msg.From.FirstName, referrerID)
	if err != nil && !errors.Is(err, service.ErrAccountExists) {
		log.Error("failed to register user on /start",
			zap.Int64("telegram_id", userID),
			zap.Error(err))
	}

	markup := &model.Markup{
		Rows: [][]model.MarkupButton{{
			{Text: "🎮 Open G-Task Manager", WebAppURL: b.miniAppURL},
		}},
	}
	text := fmt.Sprintf(
		"Welcome to G-Task Manager, %s! 👋\n\n"+
			"🎁 Complete small tasks and earn ETB\n"+
			"👥 Invite friends and earn 5%% of everything they make\n\n"+
			"Open the mini app to get started.",
		msg.From.FirstName)

	b.sender.Send(ctx, msg.Chat.ID, text, markup)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := "<b>G-Task Manager</b>\n\n" +
		"/start - open the mini app\n" +
		"/balance - show your balance and stats\n" +
		"/invite - get your referral link\n" +
		"/withdraw - withdrawal info\n\n" +
		"👥 Referrals earn you <b>5%</b> of every task your invitees complete."
	b.sender.Send(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	acc, err := b.accounts.GetAccount(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			b.sender.Send(ctx, msg.Chat.ID, "You are not registered yet. Send /start first.", nil)
			return
		}
		logger.Logger().Error("failed to load balance",
			zap.Int64("telegram_id", msg.From.ID),
			zap.Error(err))
		b.sender.Send(ctx, msg.Chat.ID, "Could not load your balance, try again later.", nil)
		return
	}

	text := fmt.Sprintf(
		"💰 <b>Your balance</b>\n\n"+
			"Balance: <b>%s ETB</b>\n"+
			"Lifetime earnings: %s ETB\n"+
			"Completed tasks: %d\n"+
			"Referrals: %d",
		acc.Balance.StringFixed(2),
		acc.TotalEarnings.StringFixed(2),
		acc.CompletedTasks,
		acc.ReferralCount)
	b.sender.Send(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleInvite(ctx context.Context, msg *tgbotapi.Message) {
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.api.Self.UserName, msg.From.ID)
	text := fmt.Sprintf(
		"👥 <b>Invite and earn</b>\n\n"+
			"Your referral link:\n<code>%s</code>\n\n"+
			"You earn <b>5%%</b> of every task your invitees complete.",
		link)
	b.sender.Send(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleWithdraw(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(
		"💳 <b>Withdrawals</b>\n\n"+
			"Minimum withdrawal: <b>%s ETB</b>\n"+
			"Request a payout from the mini app.",
		minWithdrawalETB)
	b.sender.Send(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.adminID {
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.sender.Send(ctx, msg.Chat.ID, "Usage: /broadcast <message>", nil)
		return
	}

	// Long fan-outs outlive the update that triggered them.
	go func() {
		sent, failed, err := b.broadcaster.Broadcast(context.Background(), text)
		if err != nil {
			logger.Logger().Error("broadcast aborted", zap.Error(err))
		}
		summary := fmt.Sprintf("📣 Broadcast done: %d sent, %d failed.", sent, failed)
		b.sender.Send(context.Background(), msg.Chat.ID, summary, nil)
	}()
}
