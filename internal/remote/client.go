// Package remote implements service.Service against the list REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 10 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a client for the API at baseURL. A non-empty token is sent as
// a bearer token on every request.
func New(baseURL, token string, timeout time.Duration) *Client {
	httpClient := &http.Client{}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	return NewWithHTTPClient(baseURL, httpClient, timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// GetListItems implements service.Service.
func (c *Client) GetListItems(ctx context.Context, listID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.do(ctx, http.MethodGet, itemsPath(listID), nil, &snap)
	return snap, err
}

// GetItem implements service.Service.
func (c *Client) GetItem(ctx context.Context, listID, itemID string) (domain.Item, error) {
	var item domain.Item
	err := c.do(ctx, http.MethodGet, itemPath(listID, itemID), nil, &item)
	return item, err
}

// CreateItem implements service.Service.
func (c *Client) CreateItem(ctx context.Context, listID string) (domain.Item, error) {
	var item domain.Item
	body := map[string]any{"list_item": map[string]any{}}
	err := c.do(ctx, http.MethodPost, itemsPath(listID), body, &item)
	return item, err
}

// UpdateItem implements service.Service.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID string, patch domain.ItemPatch) error {
	body := map[string]any{"list_item": patch}
	return c.do(ctx, http.MethodPut, itemPath(listID, itemID), body, nil)
}

// DeleteItem implements service.Service.
func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) error {
	return c.do(ctx, http.MethodDelete, itemPath(listID, itemID), nil, nil)
}

// CreateField implements service.Service.
func (c *Client) CreateField(ctx context.Context, listID, itemID string, input domain.FieldInput) (domain.Field, error) {
	var field domain.Field
	body := map[string]any{"list_item_field": input}
	err := c.do(ctx, http.MethodPost, itemPath(listID, itemID)+"/list_item_fields", body, &field)
	return field, err
}

// UpdateField implements service.Service.
func (c *Client) UpdateField(ctx context.Context, listID, itemID, fieldID, data string) error {
	body := map[string]any{"list_item_field": map[string]string{"data": data}}
	path := itemPath(listID, itemID) + "/list_item_fields/" + url.PathEscape(fieldID)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// GetFieldConfigurations implements service.Service.
func (c *Client) GetFieldConfigurations(ctx context.Context, listConfigurationID string) ([]domain.FieldConfiguration, error) {
	var configs []domain.FieldConfiguration
	path := "/v2/list_item_configurations/" + url.PathEscape(listConfigurationID) + "/list_item_field_configurations"
	err := c.do(ctx, http.MethodGet, path, nil, &configs)
	return configs, err
}

func itemsPath(listID string) string {
	return "/v2/lists/" + url.PathEscape(listID) + "/list_items"
}

func itemPath(listID, itemID string) string {
	return itemsPath(listID) + "/" + url.PathEscape(itemID)
}

// do sends one request bounded by the client timeout and decodes a JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(parent, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return wrapError(parent, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &service.ResponseError{Status: resp.StatusCode}
		if json.Valid(data) {
			respErr.Data = json.RawMessage(data)
		}
		return respErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// wrapError keeps caller cancellation as is and reports every other
// transport failure, including the client timeout, as no response.
func wrapError(parent context.Context, err error) error {
	if cerr := parent.Err(); cerr != nil {
		return cerr
	}
	return &service.NoResponseError{Err: err}
}

var _ service.Service = (*Client)(nil)
