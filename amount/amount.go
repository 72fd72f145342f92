// Package amount implements the unsigned 256-bit quantity type used for
// balances, allowances and total supply.
//
// Every arithmetic operation is checked: instead of wrapping silently the
// way machine integers do, an operation that would overflow or underflow
// returns an error and no result. Amounts are values — copying one never
// aliases another — which keeps ledger state cloning trivially correct.
package amount

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Sentinel errors for the checked arithmetic operations.
var (
	ErrOverflow     = errors.New("amount: arithmetic overflow")
	ErrUnderflow    = errors.New("amount: arithmetic underflow")
	ErrDivideByZero = errors.New("amount: division by zero")
)

// Amount is an unsigned 256-bit quantity.
// The zero value is ready to use and represents zero.
type Amount struct {
	i uint256.Int
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// FromUint64 builds an Amount from a machine integer.
func FromUint64(v uint64) Amount {
	var a Amount
	a.i.SetUint64(v)
	return a
}

// FromDecimal parses a base-10 string into an Amount.
// The string must be non-negative and fit in 256 bits.
func FromDecimal(s string) (Amount, error) {
	i, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return Amount{i: *i}, nil
}

// MustParse is like FromDecimal but panics on error.
// Use for hardcoded constants only.
func MustParse(s string) Amount {
	a, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Scale returns units × 10^decimals, the conversion from whole token units
// to the smallest denomination. Fails with ErrOverflow when the scaled
// value does not fit in 256 bits.
func Scale(units uint64, decimals uint8) (Amount, error) {
	a := FromUint64(units)
	ten := FromUint64(10)
	for range decimals {
		var err error
		a, err = a.Mul(ten)
		if err != nil {
			return Amount{}, err
		}
	}
	return a, nil
}

// Add returns a + b, failing with ErrOverflow when the sum wraps.
func (a Amount) Add(b Amount) (Amount, error) {
	var z uint256.Int
	if _, carry := z.AddOverflow(&a.i, &b.i); carry {
		return Amount{}, ErrOverflow
	}
	return Amount{i: z}, nil
}

// Sub returns a - b, failing with ErrUnderflow when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var z uint256.Int
	if _, borrow := z.SubOverflow(&a.i, &b.i); borrow {
		return Amount{}, ErrUnderflow
	}
	return Amount{i: z}, nil
}

// Mul returns a × b, failing with ErrOverflow when the product wraps.
func (a Amount) Mul(b Amount) (Amount, error) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&a.i, &b.i); overflow {
		return Amount{}, ErrOverflow
	}
	return Amount{i: z}, nil
}

// Div returns a ÷ b truncated toward zero, failing with ErrDivideByZero
// when b is zero.
func (a Amount) Div(b Amount) (Amount, error) {
	if b.i.IsZero() {
		return Amount{}, ErrDivideByZero
	}
	var z uint256.Int
	z.Div(&a.i, &b.i)
	return Amount{i: z}, nil
}

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.i.Cmp(&b.i) }

// Lt reports whether a < b.
func (a Amount) Lt(b Amount) bool { return a.i.Lt(&b.i) }

// Gt reports whether a > b.
func (a Amount) Gt(b Amount) bool { return a.i.Gt(&b.i) }

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool { return a.i.IsZero() }

// Uint64 returns the low 64 bits; ok is false when the value does not fit.
func (a Amount) Uint64() (v uint64, ok bool) {
	if !a.i.IsUint64() {
		return 0, false
	}
	return a.i.Uint64(), true
}

// String returns the base-10 representation.
func (a Amount) String() string { return a.i.Dec() }

// MarshalText implements encoding.TextMarshaler using the decimal form.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.i.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Empty input decodes as zero so that optional columns round-trip.
func (a *Amount) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Amount{}
		return nil
	}
	parsed, err := FromDecimal(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the amount as a quoted decimal string. 256-bit
// values do not survive JSON number parsing in most consumers.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.Dec() + `"`), nil
}

// UnmarshalJSON decodes a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return a.UnmarshalText([]byte(s))
}
