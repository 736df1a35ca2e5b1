package domain

import "github.com/shopspring/decimal"

// InterestStrategy computes accrued interest for a balance. Strategies are
// immutable and hold no reference back to the account they are applied to.
type InterestStrategy interface {
	CalculateInterest(balance decimal.Decimal) decimal.Decimal
}

type FlatRateStrategy struct {
	Rate decimal.Decimal
}

func NewFlatRateStrategy(rate string) FlatRateStrategy {
	return FlatRateStrategy{Rate: decimal.RequireFromString(rate)}
}

func (s FlatRateStrategy) CalculateInterest(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(s.Rate)
}

// TieredRateStrategy adds a bonus rate once the balance reaches the bonus
// threshold, with the effective rate capped at MaxRate.
type TieredRateStrategy struct {
	BaseRate       decimal.Decimal
	BonusRate      decimal.Decimal
	BonusThreshold decimal.Decimal
	MaxRate        decimal.Decimal
}

func (s TieredRateStrategy) CalculateInterest(balance decimal.Decimal) decimal.Decimal {
	rate := s.BaseRate
	if balance.GreaterThanOrEqual(s.BonusThreshold) {
		rate = rate.Add(s.BonusRate)
	}
	if rate.GreaterThan(s.MaxRate) {
		rate = s.MaxRate
	}
	return balance.Mul(rate)
}
