package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDeals(t *testing.T) {
	html := `<html><body>
		<div class="item">
			<h2>Wireless Earbuds</h2>
			<a href="/deals/earbuds">View</a>
			<span class="price">₪149.90</span>
			<img src="/img/earbuds.jpg">
		</div>
		<div class="item">
			<h3>USB Hub</h3>
			<a href="https://shop.test/hub?ref=home">View</a>
			<div class="salePrice">Now $24.99!</div>
		</div>
	</body></html>`

	deals := ExtractDeals(docFrom(t, html), "div.item", "https://shop.test/")
	require.Len(t, deals, 2)

	assert.Equal(t, "Wireless Earbuds", *deals[0].Title)
	assert.Equal(t, "https://shop.test/deals/earbuds", *deals[0].Link)
	assert.Equal(t, "₪149.90", *deals[0].Price)
	assert.Equal(t, "https://shop.test/img/earbuds.jpg", *deals[0].Image)

	assert.Equal(t, "USB Hub", *deals[1].Title)
	assert.Equal(t, "https://shop.test/hub?ref=home", *deals[1].Link)
	assert.Equal(t, "$24.99", *deals[1].Price)
	assert.Nil(t, deals[1].Image)
}

func TestExtractDealsNoMatches(t *testing.T) {
	deals := ExtractDeals(docFrom(t, "<html><body><p>nothing</p></body></html>"), ".item", "https://shop.test/")
	assert.Empty(t, deals)
}

func TestExtractTitlePriority(t *testing.T) {
	html := `<div class="item">
		<h3>Third</h3>
		<h1>  First
			Choice </h1>
		<h2>Second</h2>
	</div>`

	deals := ExtractDeals(docFrom(t, html), ".item", "https://shop.test/")
	require.Len(t, deals, 1)
	assert.Equal(t, "First Choice", *deals[0].Title)
}

func TestExtractTitleMissing(t *testing.T) {
	html := `<div class="item"><span>not a heading</span><a href="/x">x</a></div>`

	deals := ExtractDeals(docFrom(t, html), ".item", "https://shop.test/")
	require.Len(t, deals, 1)
	assert.Nil(t, deals[0].Title)
}

func TestExtractLink(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{
			name: "relative resolved against base",
			html: `<div class="item"><a href="deals/1">x</a></div>`,
			want: strPtr("https://shop.test/deals/1"),
		},
		{
			name: "anchor without href ignored",
			html: `<div class="item"><a name="top">x</a></div>`,
			want: nil,
		},
		{
			name: "non-http scheme rejected",
			html: `<div class="item"><a href="javascript:void(0)">x</a></div>`,
			want: nil,
		},
		{
			name: "no anchor at all",
			html: `<div class="item"><h2>t</h2></div>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := ExtractDeals(docFrom(t, tt.html), ".item", "https://shop.test/")
			require.Len(t, deals, 1)
			if tt.want == nil {
				assert.Nil(t, deals[0].Link)
			} else {
				require.NotNil(t, deals[0].Link)
				assert.Equal(t, *tt.want, *deals[0].Link)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{
			name: "currency with thousands separators",
			html: `<div class="item"><span class="price">Price: ₪1,234.50 each</span></div>`,
			want: strPtr("₪1,234.50"),
		},
		{
			name: "no numbers yields nothing",
			html: `<div class="item"><span class="price">no numbers here</span></div>`,
			want: nil,
		},
		{
			name: "class containing price matches case-insensitively",
			html: `<div class="item"><span class="ProductPrice big">€89</span></div>`,
			want: strPtr("€89"),
		},
		{
			name: "exact price class preferred over loose match",
			html: `<div class="item"><span class="oldPrice">$99</span><span class="price">$49</span></div>`,
			want: strPtr("$49"),
		},
		{
			name: "bare number without currency symbol",
			html: `<div class="item"><span class="price">120</span></div>`,
			want: strPtr("120"),
		},
		{
			name: "no price element",
			html: `<div class="item"><h2>t</h2></div>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := ExtractDeals(docFrom(t, tt.html), ".item", "https://shop.test/")
			require.Len(t, deals, 1)
			if tt.want == nil {
				assert.Nil(t, deals[0].Price)
			} else {
				require.NotNil(t, deals[0].Price)
				assert.Equal(t, *tt.want, *deals[0].Price)
			}
		})
	}
}

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{
			name: "data URI skipped in favor of lazy source",
			html: `<div class="item"><img src="data:image/gif;base64,R0lGOD" data-src="/img/a.png"></div>`,
			want: strPtr("https://shop.test/img/a.png"),
		},
		{
			name: "external CDN host kept",
			html: `<div class="item"><img src="https://cdn.example.net/a.jpg"></div>`,
			want: strPtr("https://cdn.example.net/a.jpg"),
		},
		{
			name: "srcset fallback takes the first candidate",
			html: `<div class="item"><img srcset="/img/a-320.jpg 320w, /img/a-640.jpg 640w"></div>`,
			want: strPtr("https://shop.test/img/a-320.jpg"),
		},
		{
			name: "no image",
			html: `<div class="item"><h2>t</h2></div>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := ExtractDeals(docFrom(t, tt.html), ".item", "https://shop.test/")
			require.Len(t, deals, 1)
			if tt.want == nil {
				assert.Nil(t, deals[0].Image)
			} else {
				require.NotNil(t, deals[0].Image)
				assert.Equal(t, *tt.want, *deals[0].Image)
			}
		})
	}
}
