package service

import "github.com/shopspring/decimal"

// DefaultReferralPercent is the share of every credited amount that flows to
// the payee's referrer.
var DefaultReferralPercent = decimal.NewFromInt(5)

var hundred = decimal.NewFromInt(100)

// PercentBonusPolicy pays a fixed percentage of the credited amount, rounded
// half away from zero to two decimals. Tiered or capped schemes can replace
// it behind BonusPolicy without touching the engine.
type PercentBonusPolicy struct {
	rate decimal.Decimal
}

func NewPercentBonusPolicy(percent decimal.Decimal) *PercentBonusPolicy {
	return &PercentBonusPolicy{rate: percent.Div(hundred)}
}

func (p *PercentBonusPolicy) ComputeBonus(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.rate).Round(2)
}
