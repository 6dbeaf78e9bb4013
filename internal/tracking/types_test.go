package tracking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitHints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t  ", nil},
		{"single selector", ".price", []string{".price"}},
		{
			"newline separated",
			"span.product-price\ndiv.cost > b\nmeta[itemprop='price']",
			[]string{"span.product-price", "div.cost > b", "meta[itemprop='price']"},
		},
		{
			"comma separated",
			".price, .product__cost,#total",
			[]string{".price", ".product__cost", "#total"},
		},
		{
			"mixed separators with blanks",
			"\n.price,\r\n\n , span.amount ,\n",
			[]string{".price", "span.amount"},
		},
		{
			"order preserved",
			"#exact, .generic",
			[]string{"#exact", ".generic"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, SplitHints(tc.raw))
		})
	}
}

func TestTrackedLinkHints(t *testing.T) {
	t.Parallel()

	link := TrackedLink{ShopSelectors: ".price\nspan.amount"}
	require.Equal(t, []string{".price", "span.amount"}, link.Hints())

	require.Empty(t, TrackedLink{}.Hints())
}
