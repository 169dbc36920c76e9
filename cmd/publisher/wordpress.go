package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newswire/models"
)

// WordpressPublisher creates posts through the WordPress REST API using an
// application password. Credentials per destination: base_url, username,
// app_password.
type WordpressPublisher struct {
	httpClient *http.Client
}

func NewWordpressPublisher() *WordpressPublisher {
	return &WordpressPublisher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type wpPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (p *WordpressPublisher) Deliver(ctx context.Context, dest models.Destination, detail *models.PostDetail) error {
	baseURL := strings.TrimRight(dest.Credentials["base_url"], "/")
	username := dest.Credentials["username"]
	password := dest.Credentials["app_password"]
	if baseURL == "" || username == "" || password == "" {
		return fmt.Errorf("destination %s is missing base_url, username or app_password", dest.Name)
	}

	tr := translationFor(detail, dest.Language)
	if tr == nil {
		return fmt.Errorf("post %s has no translation for language %s", detail.ID.Hex(), dest.Language)
	}

	content := tr.ContentTranslated
	if content == "" {
		return fmt.Errorf("post %s has no full translation for wordpress", detail.ID.Hex())
	}

	title := tr.TitleTranslated
	if title == "" {
		title = detail.TitleOriginal
	}

	if tr.FeaturedImageURL != "" {
		content = fmt.Sprintf("<img src=%q />\n%s", tr.FeaturedImageURL, content)
	}

	body, err := json.Marshal(wpPostRequest{
		Title:   title,
		Content: content,
		Status:  "publish",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(username, password)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wordpress returned %d: %s", resp.StatusCode, string(snippet))
	}

	return nil
}
