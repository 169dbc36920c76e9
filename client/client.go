package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/models"
)

// Client is a thin HTTP client for the management API. It carries no
// business logic; workers compose its calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// ErrConflict maps 409 responses (duplicate post, illegal transition).
var ErrConflict = errors.New("management api conflict")

// ErrNotFound maps 404 responses.
var ErrNotFound = errors.New("management api not found")

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SourceDetail is a source with its linked destinations resolved.
type SourceDetail struct {
	models.Source
	Destinations []models.Destination `json:"destinations"`
}

// CreatePostRequest is the POST /posts body.
type CreatePostRequest struct {
	SourceID          string   `json:"source_id"`
	TitleOriginal     string   `json:"title_original"`
	ContentOriginal   string   `json:"content_original"`
	URLOriginal       string   `json:"url_original"`
	ImageURLsOriginal []string `json:"image_urls_original"`
}

// RejectResult is the reject response: the new post state plus the handle
// map to retract.
type RejectResult struct {
	Post          models.Post   `json:"post"`
	AdminMessages map[int64]int `json:"admin_messages"`
}

// DeliveryReceipt is the POST /posts/{id}/deliveries body.
type DeliveryReceipt struct {
	DestinationID string          `json:"destination_id"`
	Platform      models.Platform `json:"platform"`
	OK            bool            `json:"ok"`
	Error         string          `json:"error,omitempty"`
}

func (c *Client) ListSources(ctx context.Context) ([]SourceDetail, error) {
	var out []SourceDetail
	if err := c.do(ctx, http.MethodGet, "/sources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PostExists(ctx context.Context, articleURL string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	path := "/posts/exists?url=" + url.QueryEscape(articleURL)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, http.MethodPost, "/posts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error) {
	var out models.PostDetail
	if err := c.do(ctx, http.MethodGet, "/posts/"+id.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpsertTranslation(ctx context.Context, id primitive.ObjectID, u models.TranslationUpdate) (*models.PostTranslation, error) {
	var out models.PostTranslation
	if err := c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/translations", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkPreprocessed(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/preprocessed", nil, nil)
}

// MarkPending records that the review prompt went out. The endpoint is
// idempotent, so re-sends after a redelivery are harmless.
func (c *Client) MarkPending(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/pending", nil, nil)
}

func (c *Client) MarkReadyForFinalApproval(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/ready-for-final-approval", nil, nil)
}

func (c *Client) Approve(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/approve", nil, nil)
}

func (c *Client) MarkPublished(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/published", nil, nil)
}

func (c *Client) Reject(ctx context.Context, id primitive.ObjectID) (*RejectResult, error) {
	var out RejectResult
	if err := c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/reject", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestContentProcessing(ctx context.Context, id primitive.ObjectID, platforms []string) error {
	body := struct {
		Platforms []string `json:"platforms"`
	}{Platforms: platforms}
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/process-content", body, nil)
}

func (c *Client) SaveAdminMessages(ctx context.Context, id primitive.ObjectID, handles map[int64]int) error {
	body := struct {
		AdminMessages map[int64]int `json:"admin_messages"`
	}{AdminMessages: handles}
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/admin-message-info", body, nil)
}

// ClearAdminMessages drops the recorded handles once the review messages
// have been retracted.
func (c *Client) ClearAdminMessages(ctx context.Context, id primitive.ObjectID) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+id.Hex()+"/admin-message-info", nil, nil)
}

func (c *Client) RecordDelivery(ctx context.Context, id primitive.ObjectID, receipt DeliveryReceipt) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id.Hex()+"/deliveries", receipt, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s %s", ErrConflict, method, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("management api: %s %s: status=%d body=%s", method, path, resp.StatusCode, string(b))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
