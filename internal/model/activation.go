// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the views produced by the activation engine: lifecycle
// state, activation mode, features, attributes and persisted snapshots.
package model // import "github.com/toeirei/activation-console/internal/model"

import "time"

// ActivationState is the lifecycle state reported by the activation engine.
type ActivationState string

const (
	// StateUnknown is the zero value; no actions are defined for it.
	StateUnknown              ActivationState = ""
	StateActive               ActivationState = "active"
	StateLeaseExpired         ActivationState = "lease_expired"
	StateNotActivated         ActivationState = "not_activated"
	StateEntitlementNotActive ActivationState = "entitlement_not_active"
)

// String returns the human readable form of the state.
func (s ActivationState) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateLeaseExpired:
		return "Lease Expired"
	case StateNotActivated:
		return "Not Activated"
	case StateEntitlementNotActive:
		return "Entitlement Not Active"
	default:
		return "Unknown"
	}
}

// ActivationMode is fixed for the lifetime of an activation.
type ActivationMode string

const (
	ModeOnline  ActivationMode = "online"
	ModeOffline ActivationMode = "offline"
)

// String returns "Online" or "Offline". An unset mode reads as Online.
func (m ActivationMode) String() string {
	if m == ModeOffline {
		return "Offline"
	}
	return "Online"
}

// IsOffline reports whether the activation was made through the offline token exchange.
func (m ActivationMode) IsOffline() bool { return m == ModeOffline }

// ActivationAttribute is opaque, display-only metadata attached to an activation.
type ActivationAttribute struct {
	Key   string  `json:"key"`
	Type  string  `json:"type"`
	Value *string `json:"value,omitempty"`
}

// ActivationInfo is the activation block of a snapshot.
type ActivationInfo struct {
	ActivationID string                `json:"activation_id,omitempty"`
	State        ActivationState       `json:"state"`
	Mode         ActivationMode        `json:"mode"`
	ProductID    *string               `json:"product_id,omitempty"`
	SeatID       *string               `json:"seat_id,omitempty"`
	SeatName     *string               `json:"seat_name,omitempty"`
	LeaseExpiry  *time.Time            `json:"lease_expiry,omitempty"`
	Features     []ActivationFeature   `json:"features,omitempty"`
	Attributes   []ActivationAttribute `json:"attributes,omitempty"`
}

// Feature returns the feature with the given key.
func (a ActivationInfo) Feature(key string) (ActivationFeature, bool) {
	for _, f := range a.Features {
		if f.Key == key {
			return f, true
		}
	}
	return ActivationFeature{}, false
}

// PersistentData is what the engine keeps in local storage. Both parts may be
// missing, which is a valid result and not an error.
type PersistentData struct {
	Entitlement *Entitlement    `json:"entitlement,omitempty"`
	Activation  *ActivationInfo `json:"activation,omitempty"`
}

// IsEmpty reports whether nothing has been persisted.
func (p PersistentData) IsEmpty() bool {
	return p.Entitlement == nil && p.Activation == nil
}

// LeaseExpiry returns the persisted lease expiry, if any.
func (p PersistentData) LeaseExpiry() *time.Time {
	if p.Activation == nil {
		return nil
	}
	return p.Activation.LeaseExpiry
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string { return &s }
