// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// FeatureType is the shape of a feature entitlement.
type FeatureType string

const (
	FeatureBool        FeatureType = "bool"
	FeatureElementPool FeatureType = "element_pool"
	FeatureUsageCount  FeatureType = "usage_count"
)

// String returns the display name used in feature tables.
func (t FeatureType) String() string {
	switch t {
	case FeatureBool:
		return "Bool"
	case FeatureElementPool:
		return "ElementPool"
	case FeatureUsageCount:
		return "UsageCount"
	default:
		return "Unknown"
	}
}

// ActivationFeature is a single feature of an activation. A nil bound means
// unlimited; callers must not derive one bound from the others.
type ActivationFeature struct {
	Key                     string      `json:"key"`
	Type                    FeatureType `json:"type"`
	Active                  *int64      `json:"active,omitempty"`
	Available               *int64      `json:"available,omitempty"`
	Total                   *int64      `json:"total,omitempty"`
	CurrentUsagePeriodStart *time.Time  `json:"current_usage_period_start,omitempty"`
	NextUsagePeriodStart    *time.Time  `json:"next_usage_period_start,omitempty"`
}

// IsBool reports whether the feature is a plain on/off flag.
func (f ActivationFeature) IsBool() bool { return f.Type == FeatureBool }

// Unlimited reports whether the feature has no total ceiling.
func (f ActivationFeature) Unlimited() bool { return f.Total == nil }

// Int64Ptr is a small helper for optional counters.
func Int64Ptr(v int64) *int64 { return &v }
