package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LeadImage picks the best thumbnail candidate from a page. Priority goes
// to Open Graph and Twitter card metadata, then image_src links, then the
// first body image. Relative URLs resolve against pageURL.
func LeadImage(htmlStr string, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	metaSelectors := []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[property="og:image:secure_url"]`,
		`meta[name="twitter:image"]`,
		`meta[name="twitter:image:src"]`,
		`meta[name="thumbnail"]`,
		`meta[itemprop="image"]`,
	}
	for _, sel := range metaSelectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && content != "" {
			return resolveURL(content, base)
		}
	}

	if href, ok := doc.Find(`link[rel="image_src"]`).First().Attr("href"); ok && href != "" {
		return resolveURL(href, base)
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			return true
		}
		found = resolveURL(src, base)
		return found == ""
	})
	return found
}

func resolveURL(src string, base *url.URL) string {
	parsed, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
