package rail

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// ErrEmptyBody is returned when a rail answers without a payload.
var ErrEmptyBody = errors.New("empty rail response body")

// message is the union of the status shapes the rails send, both as
// responses and as callbacks. PayShap carries a UETR, Peach nests its
// result code, the others use a flat status.
type message struct {
	Reference         string           `json:"reference"`
	MerchantReference string           `json:"merchant_reference"`
	ExternalReference string           `json:"external_reference"`
	UETR              string           `json:"uetr"`
	ID                string           `json:"id"`
	Status            string           `json:"status"`
	Reason            string           `json:"reason"`
	ReasonCode        string           `json:"reason_code"`
	Amount            *decimal.Decimal `json:"amount"`
	Result            *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"result"`

	raw domain.JSON
}

func decodeMessage(raw []byte) (*message, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyBody
	}
	return decodeDocument(unwrapData(raw))
}

// decodeDocument decodes raw as it stands, without unwrapping an envelope.
func decodeDocument(raw []byte) (*message, error) {
	var m message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode rail message: %w", err)
	}
	if err := json.Unmarshal(raw, &m.raw); err != nil {
		return nil, fmt.Errorf("decode rail message: %w", err)
	}
	return &m, nil
}

func (m *message) reference() string {
	if m.MerchantReference != "" {
		return m.MerchantReference
	}
	return m.Reference
}

func (m *message) externalReference() string {
	switch {
	case m.UETR != "":
		return m.UETR
	case m.ExternalReference != "":
		return m.ExternalReference
	}
	return m.ID
}

func (m *message) statusCode() string {
	if m.Result != nil && m.Result.Code != "" {
		return m.Result.Code
	}
	return m.Status
}

func (m *message) reason() string {
	if m.Result != nil && m.Result.Description != "" {
		return m.Result.Description
	}
	if m.ReasonCode != "" && m.Reason != "" {
		return m.ReasonCode + ": " + m.Reason
	}
	if m.ReasonCode != "" {
		return m.ReasonCode
	}
	return m.Reason
}

// unwrapData returns the "data" object of an enveloped message, or raw. The
// key is matched exactly.
func unwrapData(raw []byte) []byte {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if data := bytes.TrimSpace(env["data"]); len(data) > 0 && data[0] == '{' {
		return data
	}
	return raw
}
