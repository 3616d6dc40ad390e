// Package units converts between human-readable decimal amounts and integer
// base units of a token with a fixed number of decimals.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the precision of the chain's native currency.
const EtherDecimals = 18

var (
	ErrInvalidAmount     = fmt.Errorf("amount is not a decimal number")
	ErrNonPositiveAmount = fmt.Errorf("amount must be greater than zero")
	ErrTooPrecise        = fmt.Errorf("amount has more fractional digits than the token supports")
)

// Parse converts a decimal string such as "12.5" into base units.
func Parse(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	// plain decimals only; decimal also takes exponents such as "1e3"
	if strings.ContainsAny(amount, "eE") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}

	base := d.Shift(int32(decimals))
	if !base.IsInteger() {
		return nil, fmt.Errorf("%w: %s (decimals %d)", ErrTooPrecise, amount, decimals)
	}
	return base.BigInt(), nil
}

// Format renders base units as a decimal string. Whole numbers keep a
// trailing ".0" so that token and ether columns read alike.
func Format(v *big.Int, decimals uint8) string {
	if v == nil {
		return ""
	}
	s := decimal.NewFromBigInt(v, -int32(decimals)).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatEther renders a wei amount.
func FormatEther(wei *big.Int) string {
	return Format(wei, EtherDecimals)
}
