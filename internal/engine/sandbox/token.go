// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package sandbox

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/activation-console/internal/model"
	"golang.org/x/crypto/blake2b"
)

// Token kinds exchanged with the portal.
const (
	kindActivationRequest  = "activation_request"
	kindActivationResponse = "activation_response"
	kindLeaseRefresh       = "lease_refresh"
	kindDeactivation       = "deactivation"
)

// ErrInvalidToken is returned for tokens that do not decode or whose seal
// does not match the tenant key.
var ErrInvalidToken = errors.New("invalid token")

// tokenPayload is the sealed content of every offline token. Fields unused
// by a kind stay empty.
type tokenPayload struct {
	Kind         string                `json:"kind"`
	TenantID     string                `json:"tenant_id"`
	ProductID    string                `json:"product_id"`
	SeatID       string                `json:"seat_id"`
	SeatName     string                `json:"seat_name,omitempty"`
	Code         string                `json:"code,omitempty"`
	EditionID    string                `json:"edition_id,omitempty"`
	ActivationID string                `json:"activation_id,omitempty"`
	LeaseExpiry  *time.Time            `json:"lease_expiry,omitempty"`
	Activation   *model.ActivationInfo `json:"activation,omitempty"`
	Entitlement  *model.Entitlement    `json:"entitlement,omitempty"`
	IssuedAt     time.Time             `json:"issued_at"`
}

// sealer packs payloads into printable tokens: JSON, zstd, then base64url,
// followed by a keyed BLAKE2b seal over the compressed bytes.
type sealer struct {
	key []byte
}

func newSealer(tenantModulus string) sealer {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(tenantModulus)))
	return sealer{key: sum[:]}
}

func (s sealer) mac(data []byte) []byte {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// only possible with a key longer than 64 bytes
		panic(err)
	}
	h.Write(data)
	return h.Sum(nil)
}

func (s sealer) seal(p tokenPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return "", fmt.Errorf("compress token: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress token: %w", err)
	}
	packed := buf.Bytes()
	enc := base64.RawURLEncoding
	return enc.EncodeToString(packed) + "." + enc.EncodeToString(s.mac(packed)), nil
}

// open verifies and decodes a token of the wanted kind.
func (s sealer) open(token, kind string) (tokenPayload, error) {
	var p tokenPayload
	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok {
		return p, ErrInvalidToken
	}
	enc := base64.RawURLEncoding
	packed, err := enc.DecodeString(body)
	if err != nil {
		return p, ErrInvalidToken
	}
	mac, err := enc.DecodeString(sig)
	if err != nil || subtle.ConstantTimeCompare(mac, s.mac(packed)) != 1 {
		return p, ErrInvalidToken
	}

	zr, err := zstd.NewReader(bytes.NewReader(packed))
	if err != nil {
		return p, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return p, ErrInvalidToken
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, ErrInvalidToken
	}
	if p.Kind != kind {
		return p, fmt.Errorf("%w: expected %s token, got %s", ErrInvalidToken, kind, p.Kind)
	}
	return p, nil
}
