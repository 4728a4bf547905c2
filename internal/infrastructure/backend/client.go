package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 5 << 20

var ErrNilClient = errors.New("nil backend client")

// StatusError is a non-2xx answer from the webapp backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status=%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status=%d", e.Status)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Client talks to the webapp REST API on behalf of a bearer token holder.
type Client struct {
	baseURL  string
	client   *http.Client
	logger   *log.Logger
	attempts int
}

func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		attempts: 3,
	}
}

// do sends one JSON request. GETs are retried on transport errors and 5xx.
// A 2xx body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, in any, out any) error {
	if c == nil || c.client == nil {
		return ErrNilClient
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.attempts
	}

	endpoint := c.baseURL + path
	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		body, status, err := c.roundTrip(ctx, method, endpoint, token, payload)
		if err != nil {
			lastErr = err
			c.logger.Printf("[Backend] request error method=%s endpoint=%s attempt=%d err=%v", method, endpoint, i+1, err)
			if i < attempts-1 {
				sleepBackoff(ctx, i)
			}
			continue
		}
		if status < 200 || status >= 300 {
			lastErr = &StatusError{Status: status, Message: backendMessage(body)}
			if status >= 500 {
				c.logger.Printf("[Backend] request failed method=%s endpoint=%s status=%d attempt=%d", method, endpoint, status, i+1)
				if i < attempts-1 {
					sleepBackoff(ctx, i)
				}
				continue
			}
			return lastErr
		}
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint, token string, payload []byte) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := readAllLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}

func backendMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && strings.TrimSpace(e.Message) != "" {
		return strings.TrimSpace(e.Message)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

func sleepBackoff(ctx context.Context, attempt int) {
	t := time.NewTimer(time.Duration(300*(attempt+1)) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}
