package upstream

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

	"go.uber.org/zap"
)

// Client warehouse REST API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

type tokenKey struct{}

// WithToken attaches the caller's bearer token; it is forwarded on every request
// made with the returned context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Page one page of a list endpoint
type Page[T any] struct {
	Records []T
	Page    int
	Limit   int
	Total   int
}

// doRequest executes one API call and unwraps the {success,message,data} envelope.
// out may be nil when the caller does not need data.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("upstream request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &StatusError{Status: 0, Message: err.Error(), Method: method, Path: path}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StatusError{Status: 0, Message: "read body: " + err.Error(), Method: method, Path: path}
	}

	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: msg, Method: method, Path: path}
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, decodeErr)
	}
	if !env.Success {
		return &StatusError{Status: resp.StatusCode, Message: env.Message, Method: method, Path: path}
	}

	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return fmt.Errorf("%w: %s %s: missing data", ErrMalformedResponse, method, path)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
		}
	}
	return nil
}

// listPage fetches one page of a list endpoint whose data is
// {"<key>": [...], "pagination": {...}}.
func listPage[T any](ctx context.Context, c *Client, path, key string, q ListQuery) (*Page[T], error) {
	var data map[string]json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, path, q.Values(), nil, &data); err != nil {
		return nil, err
	}

	rawItems, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing %q", ErrMalformedResponse, path, key)
	}
	rawPagination, ok := data["pagination"]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing pagination", ErrMalformedResponse, path)
	}

	var items []T
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %q: %v", ErrMalformedResponse, path, key, err)
	}
	var p pagination
	if err := json.Unmarshal(rawPagination, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: pagination: %v", ErrMalformedResponse, path, err)
	}
	if p.Total < 0 {
		return nil, fmt.Errorf("%w: %s: negative total %d", ErrMalformedResponse, path, p.Total)
	}

	return &Page[T]{Records: items, Page: p.Page, Limit: p.Limit, Total: p.Total}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}
