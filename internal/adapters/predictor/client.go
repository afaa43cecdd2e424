// Package predictor is the HTTP client for the churn prediction backend.
// It posts a Form Payload as JSON to <base>/predict and turns the answer
// into a validated domain.Prediction.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/csg33k/churn-advisor/internal/domain"
)

// PredictPath is the fixed backend path submissions are posted to.
const PredictPath = "/predict"

// MaxResponseBytes bounds how much of a backend response is read.
const MaxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each backend call. Zero keeps the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Predict(ctx context.Context, payload domain.FormPayload) (*domain.Prediction, error) {
	if payload == nil {
		payload = domain.FormPayload{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PredictPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	tooLarge := len(raw) > MaxResponseBytes
	if tooLarge {
		raw = raw[:MaxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RequestError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Detail:     backendDetail(raw),
		}
	}
	if tooLarge {
		return nil, &domain.ParseError{Err: fmt.Errorf("response exceeds %d bytes", MaxResponseBytes)}
	}
	return decodePrediction(raw)
}

// Health checks that the backend answers at all. Any status below 500 counts.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// statusText returns the reason phrase of resp ("Internal Server Error" for
// "500 Internal Server Error").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// backendDetail extracts {"error": ..., "detail": ...} from an error body.
func backendDetail(raw []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch {
	case body.Error != "" && body.Detail != "":
		return body.Error + ": " + body.Detail
	case body.Detail != "":
		return body.Detail
	default:
		return body.Error
	}
}
