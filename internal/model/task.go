package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskCompletion is an inbound "task completed" event. It is transient: a
// successful completion leaves behind a CompletedTask record and the balance
// adjustments, never the event itself.
type TaskCompletion struct {
	PayeeID    int64
	TaskType   string
	Amount     decimal.Decimal
	ReferrerID *int64
}

// CompletedTask is an append-only entry in the task log.
type CompletedTask struct {
	ID          uuid.UUID
	TelegramID  int64
	TaskType    string
	Amount      decimal.Decimal
	CompletedAt time.Time
}

// CompletionResult reports the outcome of a credited completion back to the
// caller. Bonus fields are zero when no referral bonus was applied.
type CompletionResult struct {
	NewBalance    decimal.Decimal
	BonusCredited bool
	BonusAmount   decimal.Decimal
	ReferrerID    int64
}
