package rail

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/config"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

func TestParseCallback(t *testing.T) {
	p := NewCallbackParser()

	t.Run("payshap", func(t *testing.T) {
		cb, err := p.ParseCallback(domain.RailPayShapRPP, []byte(`{"reference":"RPP-1","uetr":"U-1","status":"RJCT","reason_code":"AC04","reason":"closed account","amount":250.5}`))
		require.NoError(t, err)
		assert.Equal(t, "RPP-1", cb.Reference)
		assert.Equal(t, "U-1", cb.ExternalReference)
		assert.Equal(t, "RJCT", cb.StatusCode)
		assert.Equal(t, "AC04: closed account", cb.Reason)
		require.NotNil(t, cb.Amount)
		assert.Equal(t, "250.5", cb.Amount.String())
		assert.Equal(t, "U-1", cb.Raw["uetr"])
	})

	t.Run("data envelope", func(t *testing.T) {
		cb, err := p.ParseCallback(domain.RailPeachCard, []byte(`{"event":"payment","data":{"merchant_reference":"DEP-9","result":{"code":"000.000.000","description":"ok"}}}`))
		require.NoError(t, err)
		assert.Equal(t, "DEP-9", cb.Reference)
		assert.Equal(t, "000.000.000", cb.StatusCode)
		assert.Equal(t, "ok", cb.Reason)
		assert.Nil(t, cb.Raw["event"])
	})

	t.Run("external reference only", func(t *testing.T) {
		cb, err := p.ParseCallback(domain.RailZapperQR, []byte(`{"external_reference":"ZP-77","status":"PAID"}`))
		require.NoError(t, err)
		assert.Empty(t, cb.Reference)
		assert.Equal(t, "ZP-77", cb.ExternalReference)
		assert.Nil(t, cb.Amount)
	})

	invalid := map[string]string{
		"not json":        `{"status":`,
		"empty":           ``,
		"no reference":    `{"status":"PAID"}`,
		"no status":       `{"reference":"QR-1"}`,
		"negative amount": `{"reference":"QR-1","status":"PAID","amount":"-1"}`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseCallback(domain.RailZapperQR, []byte(body))
			assert.ErrorIs(t, err, domain.ErrInvalidCallback)
		})
	}
}

func TestVerifier(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	v := NewVerifier(map[domain.Rail]string{
		domain.RailZapperQR:  "zap-secret",
		domain.RailPeachCard: "",
	}, m)
	body := []byte(`{"reference":"QR-1","status":"PAID"}`)

	assert.NoError(t, v.Verify(domain.RailZapperQR, body, Sign([]byte("zap-secret"), body)))
	assert.NoError(t, v.Verify(domain.RailZapperQR, body, "sha256="+Sign([]byte("zap-secret"), body)))

	assert.ErrorIs(t, v.Verify(domain.RailZapperQR, body, Sign([]byte("other"), body)), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailZapperQR, []byte(`{"reference":"QR-1","status":"FAILED"}`), Sign([]byte("zap-secret"), body)), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailZapperQR, body, ""), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailPeachCard, body, Sign([]byte(""), body)), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailEasyPay, body, "abc"), domain.ErrInvalidSignature)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.SignatureFailures.WithLabelValues("zapper_qr")))
}

func TestVerifierSignsCanonicalDataObject(t *testing.T) {
	v := NewVerifier(map[domain.Rail]string{domain.RailEasyPay: "ep"}, nil)
	canonical := []byte(`{"amount":50.10,"reference":"EPV-1","status":"PAID"}`)
	sig := Sign([]byte("ep"), canonical)

	wire := []byte(`{
		"event": "voucher.paid",
		"data": {"status": "PAID", "reference": "EPV-1", "amount": 50.10}
	}`)
	assert.NoError(t, v.Verify(domain.RailEasyPay, wire, sig))

	signed, err := SignPayload([]byte("ep"), wire)
	require.NoError(t, err)
	assert.Equal(t, sig, signed)

	tampered := []byte(`{"event":"voucher.paid","data":{"status":"PAID","reference":"EPV-1","amount":5010}}`)
	assert.ErrorIs(t, v.Verify(domain.RailEasyPay, tampered, sig), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailEasyPay, []byte(`not json`), sig), domain.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(domain.RailEasyPay, []byte(`{"a":1} {"b":2}`), sig), domain.ErrInvalidSignature)
}

func TestCallbackEnvelopeCaseVariantRejected(t *testing.T) {
	secret := []byte("rtp-secret")
	v := NewVerifier(map[domain.Rail]string{domain.RailPayShapRTP: string(secret)}, nil)
	p := NewCallbackParser()

	signed := []byte(`{"data":{"reference":"RTP-1","status":"PDNG"}}`)
	sig, err := SignPayload(secret, signed)
	require.NoError(t, err)
	require.NoError(t, v.Verify(domain.RailPayShapRTP, signed, sig))

	cb, err := p.ParseCallback(domain.RailPayShapRTP, signed)
	require.NoError(t, err)
	assert.Equal(t, "PDNG", cb.StatusCode)

	tampered := []byte(`{"data":{"reference":"RTP-1","status":"PDNG"},"Data":{"status":"ACSP","amount":"250.00"}}`)
	assert.ErrorIs(t, v.Verify(domain.RailPayShapRTP, tampered, sig), domain.ErrInvalidSignature)
	_, err = p.ParseCallback(domain.RailPayShapRTP, tampered)
	assert.ErrorIs(t, err, domain.ErrInvalidCallback)

	_, err = Canonical([]byte(`{"DATA":{"status":"ACSP"}}`))
	assert.ErrorIs(t, err, ErrAmbiguousEnvelope)
}

func TestParseCallbackReadsSignedDocumentOnly(t *testing.T) {
	p := NewCallbackParser()

	// A nested "data" inside the signed object is not unwrapped again.
	cb, err := p.ParseCallback(domain.RailZapperQR, []byte(`{"data":{"reference":"QR-1","status":"PENDING","data":{"status":"PAID"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "PENDING", cb.StatusCode)

	canonical, err := Canonical([]byte(`{"data":{"reference":"QR-1","status":"PENDING","data":{"status":"PAID"}}}`))
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"status":"PAID"},"reference":"QR-1","status":"PENDING"}`, string(canonical))
}

func TestCanonical(t *testing.T) {
	got, err := Canonical([]byte(` { "b" : "<x>", "a" : [1, 2.50] } `))
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2.50],"b":"<x>"}`, string(got))
}

func TestRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(config.RailsConfig{
		PayShap: config.RailConfig{BaseURL: "https://bank.example"},
		Zapper:  config.RailConfig{BaseURL: "https://zapper.example"},
	}, nil)

	for _, rail := range []domain.Rail{domain.RailPayShapRPP, domain.RailPayShapRTP, domain.RailZapperQR} {
		c, err := r.Client(rail)
		require.NoError(t, err)
		assert.NotNil(t, c)
	}
	_, err := r.Client(domain.RailPeachCard)
	assert.ErrorIs(t, err, domain.ErrUnsupportedRail)
	assert.Equal(t, []domain.Rail{domain.RailPayShapRPP, domain.RailPayShapRTP, domain.RailZapperQR}, r.Rails())

	secrets := CallbackSecrets(config.RailsConfig{Peach: config.RailConfig{CallbackSecret: "p"}})
	assert.Equal(t, "p", secrets[domain.RailPeachCard])
}
