package rail

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// SignatureHeader carries the hex HMAC-SHA256 of the canonical callback
// document. See Canonical.
const SignatureHeader = "X-Signature"

// CallbackParser decodes rail callbacks into usecase.RailCallback.
type CallbackParser struct{}

// NewCallbackParser creates a new CallbackParser.
func NewCallbackParser() *CallbackParser {
	return &CallbackParser{}
}

// ParseCallback decodes the canonical document of payload, the same bytes
// Verify signs. A callback must name the movement through our reference or
// the rail's and must carry a status.
func (p *CallbackParser) ParseCallback(rail domain.Rail, payload []byte) (*usecase.RailCallback, error) {
	canonical, err := Canonical(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCallback, err)
	}
	msg, err := decodeDocument(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCallback, err)
	}
	cb := &usecase.RailCallback{
		Reference:         msg.reference(),
		ExternalReference: msg.externalReference(),
		StatusCode:        msg.statusCode(),
		Reason:            msg.reason(),
		Amount:            msg.Amount,
		Raw:               msg.raw,
	}
	if cb.Reference == "" && cb.ExternalReference == "" {
		return nil, fmt.Errorf("%w: %s callback names no reference", domain.ErrInvalidCallback, rail)
	}
	if cb.StatusCode == "" {
		return nil, fmt.Errorf("%w: %s callback has no status", domain.ErrInvalidCallback, rail)
	}
	if cb.Amount != nil && cb.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount", domain.ErrInvalidCallback)
	}
	return cb, nil
}

// Verifier checks callback signatures with a per-rail shared secret. A rail
// without a secret rejects every callback.
type Verifier struct {
	secrets map[domain.Rail][]byte
	metrics *metrics.Metrics
}

// NewVerifier creates a Verifier. Empty secrets are ignored.
func NewVerifier(secrets map[domain.Rail]string, m *metrics.Metrics) *Verifier {
	v := &Verifier{secrets: make(map[domain.Rail][]byte, len(secrets)), metrics: m}
	for rail, secret := range secrets {
		if secret != "" {
			v.secrets[rail] = []byte(secret)
		}
	}
	return v
}

// Verify returns ErrInvalidSignature unless signature is the hex
// HMAC-SHA256 of the canonical form of body under the rail's secret. A body
// that is not JSON fails verification.
func (v *Verifier) Verify(rail domain.Rail, body []byte, signature string) error {
	secret, ok := v.secrets[rail]
	if !ok || len(secret) == 0 || strings.TrimSpace(signature) == "" {
		v.fail(rail)
		return domain.ErrInvalidSignature
	}
	canonical, err := Canonical(body)
	if err != nil {
		v.fail(rail)
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	expected := Sign(secret, canonical)
	given := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if !hmac.Equal([]byte(expected), []byte(given)) {
		v.fail(rail)
		return domain.ErrInvalidSignature
	}
	return nil
}

func (v *Verifier) fail(rail domain.Rail) {
	if v.metrics != nil {
		v.metrics.SignatureFailures.WithLabelValues(string(rail)).Inc()
	}
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPayload signs the canonical form of a callback body, as a rail would.
func SignPayload(secret, body []byte) (string, error) {
	canonical, err := Canonical(body)
	if err != nil {
		return "", err
	}
	return Sign(secret, canonical), nil
}

// ErrAmbiguousEnvelope is returned for a body whose envelope key is not
// spelled exactly "data".
var ErrAmbiguousEnvelope = errors.New("callback envelope key must be exactly \"data\"")

// Canonical returns the signed sub-document of a callback: the "data" object
// when the body is an envelope, otherwise the whole body. It is re-encoded
// compactly with sorted keys, unescaped HTML and numbers kept verbatim, so
// whitespace and key order on the wire do not affect the signature. Case
// variants of "data" at the top level are rejected.
func Canonical(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode callback: trailing data")
	}
	if obj, ok := doc.(map[string]any); ok {
		for k := range obj {
			if k != "data" && strings.EqualFold(k, "data") {
				return nil, ErrAmbiguousEnvelope
			}
		}
		if data, ok := obj["data"].(map[string]any); ok {
			doc = data
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode callback: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
