package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's durable balance and earnings record. TotalEarnings is
// the sum of every credit ever applied (task credits plus referral bonuses
// received) and never decreases; Balance can go down through withdrawals
// handled elsewhere. ReferrerID is set at creation and never changes.
type Account struct {
	TelegramID     int64
	Username       string
	FirstName      string
	Balance        decimal.Decimal
	CompletedTasks int
	ReferralCount  int
	TotalEarnings  decimal.Decimal
	ReferrerID     *int64
	CreatedAt      time.Time
}
