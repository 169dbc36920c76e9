package extractor

import "net/url"

// ValidArticleURL reports whether s is an absolute http or https URL with
// a host. Feed entries without a usable link get dropped on this check.
func ValidArticleURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// FilterImageURLs keeps only valid absolute image URLs, preserving order.
func FilterImageURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if ValidArticleURL(u) {
			out = append(out, u)
		}
	}
	return out
}
