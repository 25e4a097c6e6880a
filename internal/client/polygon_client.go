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

	"polygon-service/internal/geometry"
	"polygon-service/internal/model"
	"polygon-service/internal/service"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// PolygonClient talks to the polygon REST API and unwraps its envelope.
// Failed envelopes come back as *service.ResponseError.
type PolygonClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

type Option func(*PolygonClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *PolygonClient) { c.httpClient = hc }
}

// WithRetry sets how many attempts an idempotent request gets on transport
// errors and the base delay between them. The delay grows linearly per
// attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *PolygonClient) {
		if attempts < 1 {
			attempts = 1
		}
		c.maxRetries = attempts
		c.backoff = backoff
	}
}

func NewPolygonClient(baseURL string, opts ...Option) *PolygonClient {
	c := &PolygonClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createRequest struct {
	Name   string           `json:"name"`
	Points []geometry.Point `json:"points"`
}

type updateRequest struct {
	Name   *string          `json:"name,omitempty"`
	Points []geometry.Point `json:"points,omitzero"`
}

func (c *PolygonClient) List(ctx context.Context) ([]model.Polygon, error) {
	polygons, err := do[[]model.Polygon](ctx, c, http.MethodGet, "/polygons", nil)
	if err != nil {
		return nil, err
	}
	if polygons == nil {
		polygons = []model.Polygon{}
	}
	return polygons, nil
}

func (c *PolygonClient) Get(ctx context.Context, id int64) (model.Polygon, error) {
	return do[model.Polygon](ctx, c, http.MethodGet, polygonPath(id), nil)
}

func (c *PolygonClient) Create(ctx context.Context, name string, points []geometry.Point) (model.Polygon, error) {
	return do[model.Polygon](ctx, c, http.MethodPost, "/polygons", createRequest{Name: name, Points: points})
}

// Update sends only the non-nil fields. A nil name and nil points is a
// request with no fields, which the server reports as not found.
func (c *PolygonClient) Update(ctx context.Context, id int64, name *string, points []geometry.Point) (model.Polygon, error) {
	return do[model.Polygon](ctx, c, http.MethodPut, polygonPath(id), updateRequest{Name: name, Points: points})
}

func (c *PolygonClient) Delete(ctx context.Context, id int64) error {
	_, err := do[model.Polygon](ctx, c, http.MethodDelete, polygonPath(id), nil)
	return err
}

func polygonPath(id int64) string {
	return "/polygons/" + strconv.FormatInt(id, 10)
}

func do[T any](ctx context.Context, c *PolygonClient, method, path string, body any) (T, error) {
	var zero T

	if c.baseURL == "" {
		return zero, fmt.Errorf("polygon service URL is not configured")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return zero, fmt.Errorf("invalid polygon service URL: %w", err)
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, u.String(), payload)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}

	var envelope service.Response[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, fmt.Errorf("polygon service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if envelope.StatusCode == 0 {
		envelope.StatusCode = resp.StatusCode
	}
	if !envelope.Success {
		return zero, envelope.Err()
	}

	return envelope.ResponseObject, nil
}

// send retries transport failures of idempotent requests only; a POST gets
// one attempt since the server may have stored the row before the failure.
// Any HTTP response, including 5xx, is returned to the caller as is.
func (c *PolygonClient) send(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	attempts := c.maxRetries
	if !idempotent(method) {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * c.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, errors.Join(ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("request %s %s failed after %d attempts: %w", method, target, attempts, lastErr)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
