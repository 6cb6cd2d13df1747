// Package client talks to a remote oficina API as the stock item backend.
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
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/oficina/internal/model"
)

// Client is an HTTP implementation of the workflow's collaborator.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the API at baseURL using a bearer token.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// List returns every stock item.
func (c *Client) List(ctx context.Context) ([]model.StockItem, error) {
	var items []model.StockItem
	if err := c.do(ctx, http.MethodGet, "/api/stock-items", 0, nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if err := checkRecord(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Create stores a new stock item.
func (c *Client) Create(ctx context.Context, item model.StockItem) (*model.StockItem, error) {
	item.ID = 0
	var created model.StockItem
	if err := c.do(ctx, http.MethodPost, "/api/stock-items", 0, item, &created); err != nil {
		return nil, err
	}
	if err := checkRecord(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update overwrites the stock item with the given id.
func (c *Client) Update(ctx context.Context, id int64, item model.StockItem) (*model.StockItem, error) {
	var updated model.StockItem
	if err := c.do(ctx, http.MethodPut, itemPath(id), id, item, &updated); err != nil {
		return nil, err
	}
	if err := checkRecord(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the stock item with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), id, nil, nil)
}

func itemPath(id int64) string {
	return "/api/stock-items/" + url.PathEscape(strconv.FormatInt(id, 10))
}

// checkRecord rejects records the server should never have sent.
func checkRecord(item *model.StockItem) error {
	if !item.Persisted() {
		return &model.TransientError{Err: errors.New("stock item without id in response")}
	}
	if err := item.Validate(); err != nil {
		return &model.TransientError{Err: fmt.Errorf("invalid stock item %d in response: %w", item.ID, err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, id int64, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &model.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp, id)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.TransientError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// statusError maps an error response onto the domain error types.
func statusError(resp *http.Response, id int64) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return &model.ConflictError{Message: body.Error}
	case resp.StatusCode == http.StatusNotFound:
		return &model.NotFoundError{Resource: "stock item", ID: id}
	case resp.StatusCode == http.StatusBadRequest:
		return &model.ValidationError{Message: body.Error}
	case resp.StatusCode >= 500:
		return &model.TransientError{Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)}
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
}
