package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"newswire/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

var ErrEmptyArticle = errors.New("extractor: no readable article content")

// Article is the cleaned result of one page extraction.
type Article struct {
	Text     string
	TopImage string
}

// FetchHTML downloads the raw HTML of an article page.
func FetchHTML(ctx context.Context, pageURL string) (string, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extractor: unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	const maxBodyBytes = 16 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractArticle cleans article text and a candidate top image out of raw
// HTML. Readability runs first; trafilatura is the fallback for pages
// readability cannot handle.
func ExtractArticle(htmlStr string, pageURL string) (*Article, error) {
	if article, err := extractWithReadability(htmlStr); err == nil && article.Text != "" {
		if article.TopImage == "" {
			article.TopImage = LeadImage(htmlStr, pageURL)
		}
		return article, nil
	}

	article, err := extractWithTrafilatura(htmlStr)
	if err != nil {
		return nil, err
	}
	if article.Text == "" {
		return nil, ErrEmptyArticle
	}
	if article.TopImage == "" {
		article.TopImage = LeadImage(htmlStr, pageURL)
	}
	return article, nil
}

// FetchArticle is the full pipeline for one URL. When renderJS is set the
// page goes through headless chrome first so client rendered sites still
// produce readable text.
func FetchArticle(ctx context.Context, pageURL string, renderJS bool) (*Article, error) {
	var htmlStr string
	var err error

	if renderJS {
		htmlStr, err = RenderHTML(ctx, pageURL)
		if err != nil {
			config.Logger.Warnf("render failed for %s, falling back to plain fetch: %v", pageURL, err)
			htmlStr, err = FetchHTML(ctx, pageURL)
		}
	} else {
		htmlStr, err = FetchHTML(ctx, pageURL)
	}
	if err != nil {
		return nil, err
	}

	return ExtractArticle(htmlStr, pageURL)
}

func extractWithReadability(htmlStr string) (*Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return nil, err
	}

	return &Article{
		Text:     strings.TrimSpace(article.TextContent),
		TopImage: article.Image,
	}, nil
}

func extractWithTrafilatura(htmlStr string) (*Article, error) {
	opts := trafilatura.Options{
		IncludeImages: true,
	}

	article, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return nil, err
	}

	return &Article{
		Text:     strings.TrimSpace(article.ContentText),
		TopImage: article.Metadata.Image,
	}, nil
}
