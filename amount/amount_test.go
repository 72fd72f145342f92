package amount

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// maxValue is 2^256 - 1, the largest representable Amount.
const maxDecimal = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0", want: "0"},
		{in: "1", want: "1"},
		{in: "1000000000000000000", want: "1000000000000000000"},
		{in: maxDecimal, want: maxDecimal},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		a, err := FromDecimal(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FromDecimal(%q) expected error, got %s", tt.in, a)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromDecimal(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if a.String() != tt.want {
			t.Errorf("FromDecimal(%q) = %s, want %s", tt.in, a, tt.want)
		}
	}
}

func TestAddOverflow(t *testing.T) {
	max := MustParse(maxDecimal)

	sum, err := FromUint64(2).Add(FromUint64(3))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.String() != "5" {
		t.Errorf("2 + 3 = %s, want 5", sum)
	}

	if _, err := max.Add(FromUint64(1)); !errors.Is(err, ErrOverflow) {
		t.Errorf("max + 1 error = %v, want ErrOverflow", err)
	}

	// max + 0 is still fine.
	sum, err = max.Add(Zero())
	if err != nil {
		t.Fatalf("max + 0: %v", err)
	}
	if sum.Cmp(max) != 0 {
		t.Errorf("max + 0 = %s, want max", sum)
	}
}

func TestSubUnderflow(t *testing.T) {
	diff, err := FromUint64(5).Sub(FromUint64(3))
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.String() != "2" {
		t.Errorf("5 - 3 = %s, want 2", diff)
	}

	if _, err := FromUint64(3).Sub(FromUint64(5)); !errors.Is(err, ErrUnderflow) {
		t.Errorf("3 - 5 error = %v, want ErrUnderflow", err)
	}

	if _, err := Zero().Sub(FromUint64(1)); !errors.Is(err, ErrUnderflow) {
		t.Errorf("0 - 1 error = %v, want ErrUnderflow", err)
	}
}

func TestMulOverflow(t *testing.T) {
	prod, err := FromUint64(6).Mul(FromUint64(7))
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if prod.String() != "42" {
		t.Errorf("6 * 7 = %s, want 42", prod)
	}

	max := MustParse(maxDecimal)
	if _, err := max.Mul(FromUint64(2)); !errors.Is(err, ErrOverflow) {
		t.Errorf("max * 2 error = %v, want ErrOverflow", err)
	}

	// Multiplying by zero never overflows.
	prod, err = max.Mul(Zero())
	if err != nil {
		t.Fatalf("max * 0: %v", err)
	}
	if !prod.IsZero() {
		t.Errorf("max * 0 = %s, want 0", prod)
	}
}

func TestDivByZero(t *testing.T) {
	q, err := FromUint64(10).Div(FromUint64(3))
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if q.String() != "3" {
		t.Errorf("10 / 3 = %s, want 3 (truncating)", q)
	}

	if _, err := FromUint64(10).Div(Zero()); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("10 / 0 error = %v, want ErrDivideByZero", err)
	}
}

func TestScale(t *testing.T) {
	a, err := Scale(1_000_000, 18)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	want := "1000000" + strings.Repeat("0", 18)
	if a.String() != want {
		t.Errorf("Scale(1e6, 18) = %s, want %s", a, want)
	}

	a, err = Scale(42, 0)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if a.String() != "42" {
		t.Errorf("Scale(42, 0) = %s, want 42", a)
	}

	// 2^64-1 scaled by 10^77 exceeds 256 bits.
	if _, err := Scale(^uint64(0), 77); !errors.Is(err, ErrOverflow) {
		t.Errorf("oversized scale error = %v, want ErrOverflow", err)
	}
}

func TestComparisons(t *testing.T) {
	small := FromUint64(1)
	big := FromUint64(2)

	if !small.Lt(big) {
		t.Error("1 < 2 should hold")
	}
	if !big.Gt(small) {
		t.Error("2 > 1 should hold")
	}
	if small.Cmp(small) != 0 {
		t.Error("1 == 1 should hold")
	}
	if !Zero().IsZero() {
		t.Error("Zero should be zero")
	}
	if small.IsZero() {
		t.Error("1 should not be zero")
	}
}

func TestValueSemantics(t *testing.T) {
	a := FromUint64(10)
	b := a

	b, err := b.Add(FromUint64(5))
	if err != nil {
		t.Fatal(err)
	}

	if a.String() != "10" {
		t.Errorf("original mutated to %s after copy arithmetic", a)
	}
	if b.String() != "15" {
		t.Errorf("copy = %s, want 15", b)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := MustParse("123456789012345678901234567890")

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"123456789012345678901234567890"` {
		t.Errorf("marshal = %s", data)
	}

	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Cmp(a) != 0 {
		t.Errorf("round trip = %s, want %s", back, a)
	}
}
