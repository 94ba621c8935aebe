// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"strconv"
	"time"
)

// IntervalType is the unit of an entitlement period.
type IntervalType string

const (
	IntervalNone   IntervalType = "none"
	IntervalMinute IntervalType = "minute"
	IntervalHour   IntervalType = "hour"
	IntervalDay    IntervalType = "day"
	IntervalWeek   IntervalType = "week"
	IntervalMonth  IntervalType = "month"
	IntervalYear   IntervalType = "year"
)

// Interval is a count of IntervalType units. A nil Count means the period is not set.
type Interval struct {
	Type  IntervalType `json:"type" yaml:"type" validate:"omitempty,oneof=none minute hour day week month year"`
	Count *int         `json:"count,omitempty" yaml:"count,omitempty"`
}

// IsSet reports whether the interval describes a usable period. Unknown
// units never count as set.
func (i Interval) IsSet() bool {
	return i.Type.advances() && i.Count != nil && *i.Count > 0
}

func (t IntervalType) advances() bool {
	switch t {
	case IntervalMinute, IntervalHour, IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// AddTo returns t advanced by the interval. Unset intervals return t unchanged.
func (i Interval) AddTo(t time.Time) time.Time {
	if !i.IsSet() {
		return t
	}
	n := *i.Count
	switch i.Type {
	case IntervalMinute:
		return t.Add(time.Duration(n) * time.Minute)
	case IntervalHour:
		return t.Add(time.Duration(n) * time.Hour)
	case IntervalDay:
		return t.AddDate(0, 0, n)
	case IntervalWeek:
		return t.AddDate(0, 0, 7*n)
	case IntervalMonth:
		return t.AddDate(0, n, 0)
	case IntervalYear:
		return t.AddDate(n, 0, 0)
	}
	return t
}

func (i Interval) String() string {
	count := "null"
	if i.Count != nil {
		count = strconv.Itoa(*i.Count)
	}
	typ := i.Type
	if typ == "" {
		typ = IntervalNone
	}
	return "type: " + string(typ) + ", count: " + count
}

// Plan describes the licensing plan of an entitlement.
type Plan struct {
	Name             string   `json:"name" yaml:"name"`
	LicenseType      string   `json:"license_type" yaml:"license_type"`
	LicenseStartType string   `json:"license_start_type" yaml:"license_start_type"`
	LicenseDuration  Interval `json:"license_duration" yaml:"license_duration"`
}

// Entitlement is the set of rights granted by a license, independent of any activation.
type Entitlement struct {
	CustomerName          *string   `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	CustomerAccountRefID  *string   `json:"customer_account_ref_id,omitempty" yaml:"customer_account_ref_id,omitempty"`
	OrderRefID            *string   `json:"order_ref_id,omitempty" yaml:"order_ref_id,omitempty"`
	OfferingName          string    `json:"offering_name" yaml:"offering_name"`
	SKU                   string    `json:"sku" yaml:"sku"`
	ProductName           string    `json:"product_name" yaml:"product_name"`
	Plan                  Plan      `json:"plan" yaml:"plan"`
	GracePeriod           Interval  `json:"grace_period" yaml:"grace_period"`
	LingerPeriod          Interval  `json:"linger_period" yaml:"linger_period"`
	LeasePeriod           Interval  `json:"lease_period" yaml:"lease_period"`
	OfflineLeasePeriod    Interval  `json:"offline_lease_period" yaml:"offline_lease_period"`
	HasMaintenance        bool      `json:"has_maintenance" yaml:"has_maintenance"`
	MaintenanceExpiryDate *string   `json:"maintenance_expiry_date,omitempty" yaml:"maintenance_expiry_date,omitempty"`
	SnapshotDate          time.Time `json:"snapshot_date" yaml:"-"`
}

// IsEmpty reports whether the entitlement carries no data.
func (e Entitlement) IsEmpty() bool {
	return e.OfferingName == "" && e.ProductName == "" && e.SKU == ""
}
