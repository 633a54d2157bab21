package mathutil

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	//BigOne represents one bitcoin expressed in satoshis
	BigOne = uint64(math.Pow10(8))
	//BigOneDecimal represents one bitcoin expressed in satoshis as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))
	// Hundred is used to turn percentages into rates
	Hundred = decimal.NewFromInt(100)
	// MaxSatoshiDecimal is the total supply of bitcoin expressed in satoshis
	MaxSatoshiDecimal = decimal.NewFromInt(MaxSatoshi)

	// ErrAmountOutOfRange is returned for amounts exceeding the total supply
	// of bitcoin.
	ErrAmountOutOfRange = errors.New("amount exceeds the total supply of bitcoin")
)

// MaxSatoshi is the total supply of bitcoin expressed in satoshis.
const MaxSatoshi int64 = 21e6 * 1e8

// ToSatoshi converts an amount expressed in BTC into satoshis, truncating
// any fraction of satoshi. Amounts whose absolute value exceeds MaxSatoshi are
// rejected.
func ToSatoshi(btc float64) (int64, error) {
	satoshis := MulDecimal(decimal.NewFromFloat(btc), BigOneDecimal)
	if satoshis.Abs().GreaterThan(MaxSatoshiDecimal) {
		return 0, ErrAmountOutOfRange
	}
	return satoshis.IntPart(), nil
}

// ToBTC converts an amount of satoshis into BTC.
func ToBTC(satoshis int64) decimal.Decimal {
	return decimal.NewFromInt(satoshis).DivRound(BigOneDecimal, 8)
}

// PercentageToRate turns a percentage (ie. 0.5 for 0.5%) into a rate.
func PercentageToRate(percentage float64) float64 {
	rate, _ := decimal.NewFromFloat(percentage).DivRound(Hundred, 16).Float64()
	return rate
}

// MulDecimal takes two decimal.Decimal numbers and multiply them x * y and returns the result as decimal.Decimal
func MulDecimal(X, Y decimal.Decimal) (z decimal.Decimal) {
	z = X.Mul(Y)
	return
}
