package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func requireAmount(t *testing.T, m *Match, want string) {
	t.Helper()
	require.NotNil(t, m)
	require.True(t, decimal.RequireFromString(want).Equal(m.Amount),
		"want %s, got %s (strategy %s)", want, m.Amount, m.Strategy)
}

func TestMetadataPreferredOverStyledText(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta itemprop="price" content="4990">
	</head><body>
		<div class="price">5 490 руб.</div>
	</body></html>`

	m := Extract(html, DefaultHints)
	requireAmount(t, m, "4990")
	require.Equal(t, "hint:meta[itemprop='price']", m.Strategy)
}

func TestHintOrderWins(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<span class="shop-price">1200</span>
		<div class="price">999</div>
	</body></html>`

	m := Extract(html, []string{".shop-price", ".price"})
	requireAmount(t, m, "1200")
}

func TestZeroPriceFallsThroughToNextStrategy(t *testing.T) {
	t.Parallel()

	// The meta hint parses to zero and must be rejected; the chain should
	// continue down to the styled element.
	html := `<html><head>
		<meta itemprop="price" content="0">
	</head><body>
		<div class="price">2 490,50</div>
	</body></html>`

	m := Extract(html, DefaultHints)
	requireAmount(t, m, "2490.5")
}

func TestAllStrategiesMissYieldsNil(t *testing.T) {
	t.Parallel()

	html := `<html><body><p>Товар временно отсутствует</p></body></html>`
	require.Nil(t, Extract(html, DefaultHints))
	require.Nil(t, Extract("", DefaultHints))
}

func TestRawJSONPriceBeforeDOM(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<script>window.__STATE__ = {"product":{"price": "7 999,99"}};</script>
		<div class="price">1</div>
	</body></html>`

	m := Extract(html, DefaultHints)
	requireAmount(t, m, "7999.99")
	require.Equal(t, "raw_json", m.Strategy)
}

func TestJSONLDPrefersOffers(t *testing.T) {
	t.Parallel()

	// The leading state blob carries a zero price so the raw regex scan
	// rejects its first hit and the chain reaches the JSON-LD walk.
	html := `<html><head>
		<script>var state = {"price": 0};</script>
		<script type="application/ld+json">
		{"@type":"Product","name":"Смеситель","offers":{"@type":"Offer","price":"15 990"}}
		</script>
	</head><body></body></html>`

	m := Extract(html, nil)
	requireAmount(t, m, "15990")
	require.Equal(t, "json_ld", m.Strategy)
}

func TestJSONLDNumericPrice(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script>var state = {"price": 0};</script>
		<script type="application/ld+json">
		[{"@type":"Product","offers":[{"price":2499.9}]}]
		</script>
	</head><body></body></html>`

	m := Extract(html, nil)
	requireAmount(t, m, "2499.9")
	require.Equal(t, "json_ld", m.Strategy)
}

func TestJSONLDSiblingWalkIsDeterministic(t *testing.T) {
	t.Parallel()

	// Two sibling objects carry prices; "bundle" sorts before "variants"
	// and must win on every run.
	html := `<html><head>
		<script>var state = {"price": 0};</script>
		<script type="application/ld+json">
		{"@type":"Product","variants":{"price":"5 000"},"bundle":{"price":"7 000"}}
		</script>
	</head><body></body></html>`

	for range 5 {
		m := Extract(html, nil)
		requireAmount(t, m, "7000")
		require.Equal(t, "json_ld", m.Strategy)
	}
}

func TestFreeTextHeuristic(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div id="page">
			<p>Очень длинное описание товара, которое не содержит никаких цен и просто занимает место на странице, чтобы пройти мимо лимита длины, установленного эвристикой свободного текста.</p>
			<span>3 990 ₽</span>
		</div>
	</body></html>`

	m := Extract(html, nil)
	requireAmount(t, m, "3990")
	require.Equal(t, "free_text", m.Strategy)
}

func TestFreeTextLengthCeilingCountsRunes(t *testing.T) {
	t.Parallel()

	// The candidate text is under the length ceiling in characters but well
	// over it in bytes, since Cyrillic is two bytes per rune.
	fragment := "Смартфон с отличной камерой и быстрой зарядкой сегодня всего за 3 990 ₽ в фирменном магазине с доставкой"
	require.Less(t, len([]rune(fragment)), maxFreeTextLen)
	require.Greater(t, len(fragment), maxFreeTextLen)

	html := `<html><body>
		<p>Очень длинное описание товара, которое не содержит никаких цен и просто занимает место на странице, чтобы пройти мимо лимита длины, установленного эвристикой свободного текста.</p>
		<span>` + fragment + `</span>
	</body></html>`

	m := Extract(html, nil)
	requireAmount(t, m, "3990")
	require.Equal(t, "free_text", m.Strategy)
}

func TestMalformedHintSelectorIsSkipped(t *testing.T) {
	t.Parallel()

	html := `<html><body><div class="price">500</div></body></html>`

	m := Extract(html, []string{"div[unclosed", "  ", ".price"})
	requireAmount(t, m, "500")
}

func TestMetaWithoutContentAttribute(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta itemprop="price">
	</head><body>
		<div class="price">750</div>
	</body></html>`

	m := Extract(html, DefaultHints)
	requireAmount(t, m, "750")
}
