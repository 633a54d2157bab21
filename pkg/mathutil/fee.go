package mathutil

import (
	"github.com/shopspring/decimal"
)

// OutgoingFee calculates the Airbitz fee owed on an outgoing amount of
// satoshis given a rate (ie. 0.005 = 0.5%). The result is clamped to
// [min, max]. A max of 0 means no upper bound. Amounts under noFeeMin pay no
// fee.
func OutgoingFee(amount int64, rate float64, min, max, noFeeMin int64) int64 {
	if amount <= 0 || amount < noFeeMin {
		return 0
	}

	fee := MulDecimal(
		decimal.NewFromInt(amount), decimal.NewFromFloat(rate),
	).IntPart()

	if fee < min {
		fee = min
	}
	if max > 0 && fee > max {
		fee = max
	}
	return fee
}

// IncomingFee calculates the Airbitz fee on an incoming amount the same way
// OutgoingFee does, without the no-fee threshold.
func IncomingFee(amount int64, rate float64, min, max int64) int64 {
	return OutgoingFee(amount, rate, min, max, 0)
}
