package salary

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"0", 0},
		{"25000", 2500000},
		{"1250.5", 125050},
		{"0.005", 1},
		{"0.004", 0},
		{" 99.99 ", 9999},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMoney("abc")
	assert.Error(t, err)
}

func TestRate_Of_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		name string
		rate Rate
		m    Money
		want Money
	}{
		{"12 percent", Percent(12), Rupees(27000), Rupees(3240)},
		{"tiny amount", Rate(50), Money(1), Money(0)},
		{"rounds up at half", Rate(5000), Money(1), Money(1)},
		{"0.75 percent", Rate(75), Rupees(21000), Money(15750)},
		{"below half", Rate(75), Money(66), Money(0)},
		{"at half", Rate(75), Money(67), Money(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rate.Of(tt.m))
		})
	}
}

func TestMoney_DivRound(t *testing.T) {
	assert.Equal(t, Rupees(9000), Rupees(27000).DivRound(3))
	assert.Equal(t, Money(333333), Rupees(10000).DivRound(3))
	assert.Equal(t, Money(566667), Rupees(17000).DivRound(3))
	assert.Equal(t, Money(-3), Money(-5).DivRound(2))
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: MustParseMoney("3333.3")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 3333.30}`, string(b))

	var out struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": "157.5"}`), &out))
	assert.Equal(t, Money(15750), out.Amount)
}

func TestRateFromPercent(t *testing.T) {
	r, err := RateFromPercent(decimal.RequireFromString("0.75"))
	require.NoError(t, err)
	assert.Equal(t, Rate(75), r)
	assert.Equal(t, "0.75%", r.String())

	_, err = RateFromPercent(decimal.RequireFromString("0.755"))
	assert.Error(t, err)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "34500.00", Rupees(34500).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}
