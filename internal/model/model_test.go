// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"testing"
	"time"
)

func TestActivationStateString(t *testing.T) {
	tests := []struct {
		state ActivationState
		want  string
	}{
		{StateActive, "Active"},
		{StateLeaseExpired, "Lease Expired"},
		{StateNotActivated, "Not Activated"},
		{StateEntitlementNotActive, "Entitlement Not Active"},
		{StateUnknown, "Unknown"},
		{ActivationState("bogus"), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Fatalf("%q.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestActivationModeDefaultsToOnline(t *testing.T) {
	var m ActivationMode
	if m.String() != "Online" || m.IsOffline() {
		t.Fatalf("zero mode should read as online, got %s", m)
	}
	if !ModeOffline.IsOffline() {
		t.Fatalf("ModeOffline.IsOffline() = false")
	}
}

func TestPersistentDataIsEmpty(t *testing.T) {
	if !(PersistentData{}).IsEmpty() {
		t.Fatalf("zero PersistentData should be empty")
	}
	p := PersistentData{Activation: &ActivationInfo{State: StateActive}}
	if p.IsEmpty() {
		t.Fatalf("PersistentData with activation should not be empty")
	}
	if p.LeaseExpiry() != nil {
		t.Fatalf("expected nil lease expiry")
	}
}

func TestIntervalAddTo(t *testing.T) {
	base := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	two := 2

	tests := []struct {
		name string
		in   Interval
		want time.Time
	}{
		{"unset", Interval{}, base},
		{"none", Interval{Type: IntervalNone, Count: &two}, base},
		{"unknown unit", Interval{Type: IntervalType("days"), Count: &two}, base},
		{"hours", Interval{Type: IntervalHour, Count: &two}, base.Add(2 * time.Hour)},
		{"days", Interval{Type: IntervalDay, Count: &two}, base.AddDate(0, 0, 2)},
		{"weeks", Interval{Type: IntervalWeek, Count: &two}, base.AddDate(0, 0, 14)},
		{"years", Interval{Type: IntervalYear, Count: &two}, base.AddDate(2, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AddTo(base); !got.Equal(tt.want) {
				t.Fatalf("AddTo = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIntervalIsSetRejectsUnknownUnits(t *testing.T) {
	one := 1
	if (Interval{Type: IntervalType("days"), Count: &one}).IsSet() {
		t.Fatal("an unknown unit must not count as a usable period")
	}
	if !(Interval{Type: IntervalMonth, Count: &one}).IsSet() {
		t.Fatal("a month interval should be set")
	}
	zero := 0
	if (Interval{Type: IntervalDay, Count: &zero}).IsSet() {
		t.Fatal("a zero count should not be set")
	}
}

func TestIntervalString(t *testing.T) {
	three := 3
	if got := (Interval{Type: IntervalDay, Count: &three}).String(); got != "type: day, count: 3" {
		t.Fatalf("unexpected interval string %q", got)
	}
	if got := (Interval{}).String(); got != "type: none, count: null" {
		t.Fatalf("unexpected interval string %q", got)
	}
}

func TestActivationInfoFeature(t *testing.T) {
	info := ActivationInfo{Features: []ActivationFeature{
		{Key: "a", Type: FeatureBool},
		{Key: "b", Type: FeatureElementPool, Total: Int64Ptr(3)},
	}}
	f, ok := info.Feature("b")
	if !ok || f.Type != FeatureElementPool || f.Unlimited() {
		t.Fatalf("unexpected feature lookup result: %+v %v", f, ok)
	}
	if _, ok := info.Feature("missing"); ok {
		t.Fatalf("expected missing feature lookup to fail")
	}
}
