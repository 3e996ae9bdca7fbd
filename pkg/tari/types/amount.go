package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 1 XTR = 10^6 µT
const microTariDecimals = 6

// Amount is a quantity of a resource in its smallest unit (microtari for XTR).
type Amount int64

// Epoch 纪元号，用于交易有效期上下界
type Epoch uint64

// ParseXTR converts a decimal XTR string ("1.25") into microtari.
// More than six fractional digits is an error rather than a silent truncation.
func ParseXTR(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal converts an XTR-denominated decimal into microtari.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(microTariDecimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d, microTariDecimals)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", d)
	}
	return Amount(shifted.IntPart()), nil
}

// XTR returns the amount expressed in XTR.
func (a Amount) XTR() decimal.Decimal {
	return decimal.New(int64(a), -microTariDecimals)
}

func (a Amount) String() string {
	return a.XTR().String() + " XTR"
}
