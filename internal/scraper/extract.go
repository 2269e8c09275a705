package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealhive/dealsaggregator/helpers"
)

// priceRegex matches an optional currency symbol followed by optional
// whitespace and a number with optional thousands separators or decimal point
var priceRegex = regexp.MustCompile(`(?:₪|\$|€)?\s?\d[\d,.]*`)

var imageAttrs = []string{"src", "data-src", "data-lazy-src"}

// ExtractDeals walks every element matching the selector and pulls out raw
// candidate records. It is a pure function of the document: missing elements
// produce nil fields, never errors, and no network or cache access happens
// here.
func ExtractDeals(doc *goquery.Document, selector string, baseURL string) []Deal {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var deals []Deal
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		deals = append(deals, Deal{
			Title: extractTitle(s),
			Link:  extractLink(s, base),
			Price: extractPrice(s),
			Image: extractImage(s, base),
		})
	})

	return deals
}

// extractTitle returns the text of the first heading inside the element,
// preferring h1 over h2 over h3
func extractTitle(s *goquery.Selection) *string {
	for _, tag := range []string{"h1", "h2", "h3"} {
		heading := s.Find(tag).First()
		if heading.Length() == 0 {
			continue
		}
		if title := helpers.NormalizeWhitespace(heading.Text()); title != "" {
			return &title
		}
	}
	return nil
}

// extractLink resolves the href of the first anchor inside the element to an
// absolute URL
func extractLink(s *goquery.Selection, base *url.URL) *string {
	anchor := s.Find("a[href]").First()
	if anchor.Length() == 0 {
		return nil
	}
	href, _ := anchor.Attr("href")
	return resolveURL(base, href)
}

// extractPrice finds a price-carrying element and returns the first price
// pattern in its text. The exact "price" class wins; otherwise the first
// element whose class mentions price, in any casing, is used.
func extractPrice(s *goquery.Selection) *string {
	priceSel := s.Find(".price").First()
	if priceSel.Length() == 0 {
		s.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			class, _ := el.Attr("class")
			if strings.Contains(strings.ToLower(class), "price") {
				priceSel = el
				return false
			}
			return true
		})
	}
	if priceSel.Length() == 0 {
		return nil
	}

	text := helpers.NormalizeWhitespace(priceSel.Text())
	match := priceRegex.FindString(text)
	if match == "" {
		return nil
	}
	match = strings.TrimSpace(match)
	return &match
}

// extractImage returns the first usable image source inside the element.
// Image hosts are not restricted: listing thumbnails routinely live on CDNs.
func extractImage(s *goquery.Selection, base *url.URL) *string {
	img := s.Find("img").First()
	if img.Length() == 0 {
		return nil
	}

	for _, attr := range imageAttrs {
		src, ok := img.Attr(attr)
		src = strings.TrimSpace(src)
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		return resolveURL(base, src)
	}

	// Lazy-loaded images sometimes only carry a srcset
	if srcset, ok := img.Attr("srcset"); ok {
		first := strings.TrimSpace(strings.SplitN(srcset, ",", 2)[0])
		if fields := strings.Fields(first); len(fields) > 0 && !strings.HasPrefix(fields[0], "data:") {
			return resolveURL(base, fields[0])
		}
	}

	return nil
}

// resolveURL resolves href against base and returns the absolute form, or nil
// when the reference is empty, unparsable, or not http(s)
func resolveURL(base *url.URL, href string) *string {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}

	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil
	}

	resolved := abs.String()
	return &resolved
}
