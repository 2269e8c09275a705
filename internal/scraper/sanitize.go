package scraper

import (
	"net/url"
	"slices"
	"strings"
)

// SanitizeDeals cleans raw candidate records for one source. In order: links
// resolving outside the allow-list are nulled (title and price may still be
// useful, so the record survives), records with no title, link or price are
// dropped, and duplicates are removed by canonical key with the first
// occurrence winning. Running it on its own output changes nothing.
func SanitizeDeals(deals []Deal, allowedHosts []string) []Deal {
	out := make([]Deal, 0, len(deals))
	seen := make(map[string]struct{}, len(deals))

	for _, deal := range deals {
		if deal.Link != nil && !linkAllowed(*deal.Link, allowedHosts) {
			deal.Link = nil
		}

		if deal.Title == nil && deal.Link == nil && deal.Price == nil {
			continue
		}

		key := dedupKey(deal)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, deal)
	}

	return out
}

// linkAllowed reports whether the link's host is in the source's allow-list
func linkAllowed(link string, allowedHosts []string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return slices.Contains(allowedHosts, strings.ToLower(u.Hostname()))
}

// dedupKey is the canonical identity of a record: the normalized link
// (scheme+host+path, trailing slash and query stripped) when present,
// otherwise the lower-cased trimmed title. Records with neither have no key.
func dedupKey(deal Deal) string {
	if deal.Link != nil {
		if u, err := url.Parse(*deal.Link); err == nil {
			path := strings.TrimSuffix(u.Path, "/")
			return u.Scheme + "://" + strings.ToLower(u.Host) + path
		}
	}
	if deal.Title != nil {
		return strings.ToLower(strings.TrimSpace(*deal.Title))
	}
	return ""
}
