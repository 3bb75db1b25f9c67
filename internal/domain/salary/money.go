package salary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount of rupees held in paise. All salary arithmetic happens on
// Money; decimal values only appear when reading or printing amounts.
type Money int64

// Rupees returns whole rupees as Money.
func Rupees(r int64) Money {
	return Money(r * 100)
}

// MoneyFromDecimal converts d to Money, rounding half-up to two decimal places.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// ParseMoney parses a decimal string such as "25000" or "1250.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) IsNegative() bool {
	return m < 0
}

// Times multiplies m by a whole count.
func (m Money) Times(n int64) Money {
	return m * Money(n)
}

// DivRound divides m by n, rounding half away from zero.
func (m Money) DivRound(n int64) Money {
	return Money(roundDiv(int64(m), n))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Sum adds amounts. Each amount is expected to be already rounded.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// Rate is a percentage held in basis points: 1200 is 12%, 75 is 0.75%.
type Rate int64

// Percent builds a Rate from a whole-number percentage.
func Percent(p int64) Rate {
	return Rate(p * 100)
}

// RateFromPercent converts a decimal percentage like 0.75 or 3.25. Precision
// beyond basis points is rejected.
func RateFromPercent(d decimal.Decimal) (Rate, error) {
	bp := d.Shift(2)
	if !bp.Equal(bp.Truncate(0)) {
		return 0, fmt.Errorf("rate %s%% is finer than a basis point", d.String())
	}
	return Rate(bp.IntPart()), nil
}

// Of applies the rate to m and rounds half-up to the paisa.
func (r Rate) Of(m Money) Money {
	return Money(roundDiv(int64(m)*int64(r), 10000))
}

// Percent returns the rate as a decimal percentage.
func (r Rate) Percent() decimal.Decimal {
	return decimal.New(int64(r), -2)
}

func (r Rate) String() string {
	return r.Percent().String() + "%"
}

func roundDiv(n, d int64) int64 {
	if d == 0 {
		panic("salary: division by zero")
	}
	if d < 0 {
		n, d = -n, -d
	}
	if n < 0 {
		return -((-n*2 + d) / (2 * d))
	}
	return (n*2 + d) / (2 * d)
}

// MustParseMoney is ParseMoney for literals known to be valid.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}
