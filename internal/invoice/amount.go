package invoice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in whole currency units. Fractions are kept so
// percentages stay exact; rounding happens only when the value is displayed.
type Amount = decimal.Decimal

// MaxAmountDigits bounds the integer part of a parsed amount.
const MaxAmountDigits = 15

// minAmountMagnitude is the decimal position below which input is treated
// as zero.
const minAmountMagnitude = -20

// MaxAmount is the largest value ParseAmount returns; larger input is
// clamped to it.
var MaxAmount = decimal.New(1, MaxAmountDigits).Sub(decimal.New(1, 0))

var (
	hundred = decimal.NewFromInt(100)

	leadingNumber  = regexp.MustCompile(`^([+-]?)(\d+\.?\d*|\.\d+)(?:[eE]([+-]?\d+))?`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseAmount converts raw form input into a non-negative amount. Input that
// does not start with a number, or that is negative, becomes zero. The
// exponent is checked before it is applied, so "1e1000000000" clamps to
// MaxAmount instead of producing a number with a billion digits.
func ParseAmount(raw string) Amount {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil || m[1] == "-" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(m[2])
	if err != nil || v.IsZero() {
		return decimal.Zero
	}

	var shift int64
	if m[3] != "" {
		shift, err = strconv.ParseInt(m[3], 10, 32)
		if err != nil {
			if strings.HasPrefix(m[3], "-") {
				return decimal.Zero
			}
			return MaxAmount
		}
	}
	switch mag := magnitude(v) + shift; {
	case mag > MaxAmountDigits:
		return MaxAmount
	case mag < minAmountMagnitude:
		return decimal.Zero
	}
	return v.Shift(int32(shift))
}

// BoundAmount applies ParseAmount's limits to an already decoded value.
func BoundAmount(v Amount) Amount {
	if v.Sign() <= 0 {
		return decimal.Zero
	}
	switch mag := magnitude(v); {
	case mag > MaxAmountDigits:
		return MaxAmount
	case mag < minAmountMagnitude:
		return decimal.Zero
	}
	return v
}

// magnitude is the number of digits left of the decimal point, negative for
// values below 0.1. It reads the coefficient and exponent without rescaling.
func magnitude(v Amount) int64 {
	return int64(v.NumDigits()) + int64(v.Exponent())
}

// ParseQuantity converts raw form input into a non-negative whole quantity.
// Only the leading integer is considered, so "2.7" is 2 and "3 pcs" is 3.
func ParseQuantity(raw string) int64 {
	match := leadingInteger.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
