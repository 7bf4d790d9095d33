// Package supabase provides a client for Supabase PostgREST.
// It is the production persistence collaborator for lead records.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// DefaultTable is the PostgREST table holding lead rows.
const DefaultTable = "leads"

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	authKey    string
	table      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates a Supabase client. The service role key is preferred for
// authorization; the anon key is used when it is empty.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey, table string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	authKey := serviceRoleKey
	if authKey == "" {
		authKey = apiKey
	}
	if apiKey == "" {
		apiKey = authKey
	}
	if table == "" {
		table = DefaultTable
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		authKey:    authKey,
		table:      table,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		logger:     logger,
	}
}

// statusError is a non-2xx PostgREST response.
type statusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("supabase %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// retryable reports whether a failed call is worth repeating.
// Client errors (4xx) are not; transport errors and 5xx are.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	return true
}

// doRequest executes an authenticated request to Supabase PostgREST and
// returns the response body. A nil payload sends no body.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, prefer string) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(jsonBody)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.authKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, &statusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return respBody, nil
}

// execute runs fn behind the circuit breaker and maps breaker and transport
// failures onto domain errors.
//
// Client rejections (4xx other than 429) mean the backend answered; they are
// returned to the caller without counting as breaker failures.
func (c *Client) execute(operation string, fn func() error) error {
	var rejected error
	_, err := c.cb.Execute(func() (any, error) {
		err := fn()
		if err != nil && !retryable(err) {
			rejected = err
			return nil, nil
		}
		return nil, err
	})
	if rejected != nil {
		return &domain.ErrExternalService{Service: "supabase/" + operation, Err: rejected}
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "supabase"}
	}
	return &domain.ErrExternalService{Service: "supabase/" + operation, Err: err}
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
