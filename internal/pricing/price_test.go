package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseSeparatorEquivalence(t *testing.T) {
	t.Parallel()

	want := decimal.RequireFromString("12345.67")

	for _, input := range []string{
		"12345.67",
		"12 345,67",
		"12 345,67",
		"Цена: 12 345,67 руб.",
	} {
		got, ok := Parse(input)
		require.True(t, ok, "input %q", input)
		require.True(t, want.Equal(got), "input %q parsed to %s", input, got)
	}
}

func TestParseNoNumber(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "нет в наличии", "руб."} {
		_, ok := Parse(input)
		require.False(t, ok, "input %q", input)
	}
}

func TestParseTakesFirstDigitRun(t *testing.T) {
	t.Parallel()

	got, ok := Parse("от 1 990 до 2 500")
	require.True(t, ok)
	require.True(t, decimal.NewFromInt(1990).Equal(got))
}

func TestMinorUnitsRoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount string
		want   int64
	}{
		{"199.995", 20000},
		{"199.994", 19999},
		{"123.45", 12345},
		{"100", 10000},
		{"0.005", 1},
	}
	for _, tc := range cases {
		p := New(decimal.RequireFromString(tc.amount), "")
		require.Equal(t, tc.want, p.MinorUnits(), "amount %s", tc.amount)
	}
}

func TestNewDefaultsCurrency(t *testing.T) {
	t.Parallel()

	p := New(decimal.NewFromInt(10), "")
	require.Equal(t, "RUB", p.Currency)

	p = New(decimal.NewFromInt(10), "EUR")
	require.Equal(t, "EUR", p.Currency)
}

func TestPositive(t *testing.T) {
	t.Parallel()

	require.True(t, New(decimal.NewFromInt(1), "").Positive())
	require.False(t, New(decimal.Zero, "").Positive())
	require.False(t, New(decimal.NewFromInt(-5), "").Positive())
}
