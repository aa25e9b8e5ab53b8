package service

import (
	"context"
	"errors"

	"gtask_miniapp/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRequest marks a malformed completion event (bad payee id).
	ErrInvalidRequest = errors.New("invalid completion request")
	// ErrInvalidAmount marks a non-positive amount or one with more than two
	// fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPayeeNotFound means the account to be credited does not exist.
	ErrPayeeNotFound = errors.New("payee account not found")
	// ErrCreditFailed wraps a store failure on the authoritative payee
	// credit. The request was not applied and is safe to retry.
	ErrCreditFailed = errors.New("payee credit failed")
	// ErrAccountExists means registration hit an already-registered id.
	ErrAccountExists = errors.New("account already registered")
	ErrUserNotFound  = errors.New("user not found")
)

type TaskCompletionServiceI interface {
	CompleteTask(ctx context.Context, completion model.TaskCompletion) (*model.CompletionResult, error)
}

type AccountServiceI interface {
	Register(ctx context.Context, telegramID int64, username, firstName string, referrerID *int64) (*model.Account, error)
	GetAccount(ctx context.Context, telegramID int64) (*model.Account, error)
}

// LedgerStore is the durable-state boundary for accounts and the task log.
// CreditBalance and CreditReferralBonus must be atomic per account: two
// concurrent credits of a and b leave the balance increased by exactly a+b.
type LedgerStore interface {
	GetAccount(ctx context.Context, telegramID int64) (*model.Account, error)
	CreateAccount(ctx context.Context, acc *model.Account) error
	CreditBalance(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error)
	CreditReferralBonus(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error)
	RecordCompletedTask(ctx context.Context, telegramID int64, taskType string, amount decimal.Decimal) (*model.CompletedTask, error)
	ListAccountIDs(ctx context.Context) ([]int64, error)
}

// MessageSender is the chat transport boundary. Send reports delivery and
// never returns an error, so callers stay fire-and-forget.
type MessageSender interface {
	Send(ctx context.Context, telegramID int64, text string, markup *model.Markup) bool
}

// BalancePublisher pushes a fresh balance to a live client, if one is
// connected. Implementations must not block.
type BalancePublisher interface {
	PublishBalance(telegramID int64, balance decimal.Decimal)
}

// BonusPolicy computes the referral bonus for a credited amount. Pure.
type BonusPolicy interface {
	ComputeBonus(amount decimal.Decimal) decimal.Decimal
}

// CompletionNotifier delivers outcome messages for an already-durable credit.
// Failures inside the notifier never surface to the ledger path.
type CompletionNotifier interface {
	TaskCredited(payee *model.Account, taskType string, amount decimal.Decimal)
	BonusCredited(referrer *model.Account, bonus decimal.Decimal, payeeID int64)
}

// ValidAmount accepts positive decimals with at most two fractional digits.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Exponent() >= -2
}
