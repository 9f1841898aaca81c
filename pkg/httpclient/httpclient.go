// Package httpclient 带重试的 JSON HTTP 客户端，用于服务自检与对外调用。
package httpclient

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

	"github.com/pkg/errors"
)

var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrJSONMarshal       = errors.New("JSON marshal failed")
	ErrJSONUnmarshal     = errors.New("JSON unmarshal failed")
	ErrStatusNotOK       = errors.New("HTTP status code is not successful")
	ErrEmptyResponseBody = errors.New("response body is empty")
)

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s, body: %s", ErrStatusNotOK, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatusNotOK }

// IsRetriableError 5xx 与常见网络抖动可重试
func IsRetriableError(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout")
}

// Client HTTP 客户端
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Headers    map[string]string
	Retries    int
	Backoff    time.Duration
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = timeout }
}

func WithRetries(retries int) Option {
	return func(c *Client) { c.Retries = retries }
}

func WithBackoff(backoff time.Duration) Option {
	return func(c *Client) { c.Backoff = backoff }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.Headers[key] = value }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.HTTPClient = client }
}

// NewClient 默认超时 30s，重试 3 次，退避 500ms 起指数增长
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Headers:    map[string]string{"Content-Type": "application/json"},
		Retries:    3,
		Backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SetHeader 设置默认请求头，如 Authorization
func (c *Client) SetHeader(key, value string) {
	c.Headers[key] = value
}

func (c *Client) buildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", errors.Wrap(ErrInvalidURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Wrap(ErrInvalidURL, c.BaseURL+path)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(ErrJSONMarshal, err.Error())
		}
		return data, nil
	}
}

// Do 发送请求，成功时返回完整响应体；非 2xx 返回 *StatusError
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	target, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.Backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.once(ctx, method, target, payload)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !IsRetriableError(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// GetJSON 发送 GET 并解析 JSON 响应
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, response any) error {
	data, err := c.Do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return decode(data, response)
}

// PostJSON 发送 POST 并解析 JSON 响应
func (c *Client) PostJSON(ctx context.Context, path string, body, response any) error {
	data, err := c.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(data, response)
}

// Ping 请求 path，2xx 视为存活
func (c *Client) Ping(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	return err
}

func decode(data []byte, response any) error {
	if response == nil {
		return nil
	}
	if len(data) == 0 {
		return ErrEmptyResponseBody
	}
	if err := json.Unmarshal(data, response); err != nil {
		return errors.Wrapf(ErrJSONUnmarshal, "%s, body: %s", err, string(data))
	}
	return nil
}
