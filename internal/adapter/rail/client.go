// Package rail talks JSON over HTTP to the external payment rails.
package rail

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

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const (
	headerAPIKey         = "X-Api-Key"
	headerIdempotencyKey = "Idempotency-Key"
	maxResponseBytes     = 1 << 20
)

// paymentRequest is the body POSTed to {base}/payments.
type paymentRequest struct {
	Rail              string          `json:"rail"`
	Reference         string          `json:"reference"`
	ExternalReference string          `json:"external_reference,omitempty"`
	Direction         string          `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	UserID            string          `json:"user_id,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	Details           domain.JSON     `json:"details,omitempty"`
}

// HTTPClient is a usecase.RailClient for one rail endpoint.
type HTTPClient struct {
	rail    domain.Rail
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithOAuth authenticates every request with a client-credentials token.
func WithOAuth(cfg config.OAuthConfig) Option {
	return func(h *HTTPClient) {
		if !cfg.Enabled() {
			return
		}
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		timeout := h.http.Timeout
		h.http = cc.Client(context.Background())
		h.http.Timeout = timeout
	}
}

// WithMetrics records request latency and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

// NewHTTPClient creates a client for rail from cfg.
func NewHTTPClient(rail domain.Rail, cfg config.RailConfig, opts ...Option) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	h := &HTTPClient{
		rail:    rail,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Initiate asks the rail to start req. The reference doubles as the
// idempotency key so redelivered dispatches are not executed twice.
func (c *HTTPClient) Initiate(ctx context.Context, req usecase.RailRequest) (*usecase.RailResponse, error) {
	body, err := json.Marshal(paymentRequest{
		Rail:              string(req.Rail),
		Reference:         req.Reference,
		ExternalReference: req.ExternalReference,
		Direction:         string(req.Direction),
		Amount:            req.Amount,
		Currency:          req.Currency,
		UserID:            req.UserID,
		ExpiresAt:         req.ExpiresAt,
		Details:           req.Details,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", c.rail, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.rail, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerIdempotencyKey, req.Reference)
	return c.do(httpReq, "initiate")
}

// GetStatus fetches the rail's current view of reference.
func (c *HTTPClient) GetStatus(ctx context.Context, rail domain.Rail, reference string) (*usecase.RailResponse, error) {
	if rail != c.rail {
		return nil, fmt.Errorf("%w: client serves %s, not %s", domain.ErrUnsupportedRail, c.rail, rail)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.rail, err)
	}
	return c.do(httpReq, "status")
}

func (c *HTTPClient) do(req *http.Request, operation string) (*usecase.RailResponse, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.RailRequestDuration.WithLabelValues(string(c.rail), operation).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrRailUnavailable, c.rail, operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s %s: read body: %v", domain.ErrRailUnavailable, c.rail, operation, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusRequestTimeout:
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s %s: http %d", domain.ErrRailUnavailable, c.rail, operation, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound && operation == "status":
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s has no record yet", domain.ErrRailUnavailable, c.rail)
	case resp.StatusCode >= http.StatusBadRequest:
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s %s: http %d: %s", domain.ErrRailRejected, c.rail, operation, resp.StatusCode, errorMessage(raw))
	}

	msg, err := decodeMessage(raw)
	if err != nil {
		c.recordError(operation)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrRailUnavailable, c.rail, operation, err)
	}
	return &usecase.RailResponse{
		ExternalReference: msg.externalReference(),
		StatusCode:        msg.statusCode(),
		Reason:            msg.reason(),
		Amount:            msg.Amount,
		Raw:               msg.raw,
	}, nil
}

func (c *HTTPClient) recordError(operation string) {
	if c.metrics != nil {
		c.metrics.RailErrors.WithLabelValues(string(c.rail), operation).Inc()
	}
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
