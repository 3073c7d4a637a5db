package rail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

func TestHTTPClientInitiate(t *testing.T) {
	var got paymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get(headerAPIKey))
		assert.Equal(t, "RPP-1", r.Header.Get(headerIdempotencyKey))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reference":"RPP-1","uetr":"UETR-9","status":"ACTC","amount":"100.00"}`))
	}))
	defer srv.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	c := NewHTTPClient(domain.RailPayShapRPP, config.RailConfig{BaseURL: srv.URL + "/", APIKey: "key-1", Timeout: time.Second}, WithMetrics(m))

	resp, err := c.Initiate(context.Background(), usecase.RailRequest{
		Rail:      domain.RailPayShapRPP,
		Reference: "RPP-1",
		Direction: domain.DirectionOutbound,
		Amount:    decimal.RequireFromString("100.00"),
		Currency:  "ZAR",
		Details:   domain.JSON{"beneficiary_proxy": "0821234567"},
	})
	require.NoError(t, err)

	assert.Equal(t, "UETR-9", resp.ExternalReference)
	assert.Equal(t, "ACTC", resp.StatusCode)
	require.NotNil(t, resp.Amount)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "RPP-1", resp.Raw["reference"])

	assert.Equal(t, "RPP-1", got.Reference)
	assert.Equal(t, "outbound", got.Direction)
	assert.Equal(t, "0821234567", got.Details["beneficiary_proxy"])
	assert.Equal(t, 1, testutil.CollectAndCount(m.RailRequestDuration))
}

func TestHTTPClientErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"server error", http.StatusBadGateway, domain.ErrRailUnavailable},
		{"throttled", http.StatusTooManyRequests, domain.ErrRailUnavailable},
		{"rejected", http.StatusUnprocessableEntity, domain.ErrRailRejected},
		{"bad request", http.StatusBadRequest, domain.ErrRailRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"beneficiary account closed"}`))
			}))
			defer srv.Close()

			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			c := NewHTTPClient(domain.RailZapperQR, config.RailConfig{BaseURL: srv.URL}, WithMetrics(m))
			_, err := c.Initiate(context.Background(), usecase.RailRequest{Rail: domain.RailZapperQR, Reference: "QR-1"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.RailErrors.WithLabelValues("zapper_qr", "initiate")))
		})
	}
}

func TestHTTPClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(domain.RailPeachCard, config.RailConfig{BaseURL: url, Timeout: time.Second})
	_, err := c.GetStatus(context.Background(), domain.RailPeachCard, "CARD-1")
	assert.ErrorIs(t, err, domain.ErrRailUnavailable)
}

func TestHTTPClientGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/CARD-1":
			_, _ = w.Write([]byte(`{"id":"8ac7a4a1","merchant_reference":"CARD-1","result":{"code":"000.000.000","description":"Transaction succeeded"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(domain.RailPeachCard, config.RailConfig{BaseURL: srv.URL})

	resp, err := c.GetStatus(context.Background(), domain.RailPeachCard, "CARD-1")
	require.NoError(t, err)
	assert.Equal(t, "000.000.000", resp.StatusCode)
	assert.Equal(t, "8ac7a4a1", resp.ExternalReference)
	assert.Equal(t, "Transaction succeeded", resp.Reason)
	assert.Equal(t, domain.MovementStatusCompleted, domain.MapRailStatus(domain.RailPeachCard, resp.StatusCode))

	_, err = c.GetStatus(context.Background(), domain.RailPeachCard, "CARD-404")
	assert.ErrorIs(t, err, domain.ErrRailUnavailable)

	_, err = c.GetStatus(context.Background(), domain.RailZapperQR, "CARD-1")
	assert.ErrorIs(t, err, domain.ErrUnsupportedRail)
}

func TestHTTPClientEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(domain.RailEasyPay, config.RailConfig{BaseURL: srv.URL})
	_, err := c.GetStatus(context.Background(), domain.RailEasyPay, "EP-1")
	assert.ErrorIs(t, err, domain.ErrRailUnavailable)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestHTTPClientOAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
		case "/payments/RTP-1":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"reference":"RTP-1","status":"PDNG"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(domain.RailPayShapRTP, config.RailConfig{BaseURL: srv.URL, Timeout: time.Second},
		WithOAuth(config.OAuthConfig{ClientID: "walletcore", ClientSecret: "s3cret", TokenURL: srv.URL + "/token"}))

	resp, err := c.GetStatus(context.Background(), domain.RailPayShapRTP, "RTP-1")
	require.NoError(t, err)
	assert.Equal(t, "PDNG", resp.StatusCode)
}
