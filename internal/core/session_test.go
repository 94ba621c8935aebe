// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/model"
)

func newTestSession(eng *fakeEngine, answers ...string) (*Session, *fakePresenter) {
	out := &fakePresenter{}
	return NewSession(Env{Engine: eng, Prompt: newPrompter(answers...), Out: out}), out
}

func TestSessionQuitsOnZero(t *testing.T) {
	eng := &fakeEngine{state: model.StateNotActivated}
	s, out := newTestSession(eng, "0")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.menus) != 1 || len(out.menus[0]) != 5 {
		t.Fatalf("expected one menu with 5 entries, got %v", out.menus)
	}
}

func TestSessionEndsOnEOF(t *testing.T) {
	s, _ := newTestSession(&fakeEngine{state: model.StateActive})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("EOF should end the session cleanly, got %v", err)
	}
}

func TestSessionInvalidSelectionContinues(t *testing.T) {
	eng := &fakeEngine{state: model.StateNotActivated}
	s, out := newTestSession(eng, "abc", "42", "q")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	n := 0
	for _, l := range out.lines {
		if l == "error: Invalid selection. Please try again." {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("expected two invalid selection messages, got %d: %v", n, out.lines)
	}
	if len(eng.calls) != 0 {
		t.Fatalf("no operation should have run: %v", eng.calls)
	}
}

func TestSessionUnknownStateOffersOnlyQuit(t *testing.T) {
	s, out := newTestSession(&fakeEngine{}, "1", "quit")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.has("error: No actions available for current state") {
		t.Fatalf("missing no-actions message: %v", out.lines)
	}
	if !out.has("error: Invalid selection") {
		t.Fatalf("selection 1 must be invalid with an empty menu")
	}
}

func TestSessionOfflineMenuNumbering(t *testing.T) {
	eng := &fakeEngine{
		state:     model.StateActive,
		info:      model.ActivationInfo{Mode: model.ModeOffline},
		persisted: model.PersistentData{Activation: &model.ActivationInfo{}},
	}
	// 2 is "Pull activation state from the local storage" once online-only entries are gone.
	s, out := newTestSession(eng, "2", "0")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := names(out.menus[0]); strings.Join(got, "|") != strings.Join([]string{
		NameShowActivationInfo, NamePullPersistedState, NameRefreshLeaseOffline, NameDeactivateOffline, NameGetEntitlement,
	}, "|") {
		t.Fatalf("unexpected offline menu: %v", got)
	}
	if !out.has("info: Executing: " + NamePullPersistedState) {
		t.Fatalf("wrong action dispatched: %v", out.lines)
	}
	if !out.has("persisted: empty=false") {
		t.Fatalf("persisted panel not shown: %v", out.lines)
	}
}

func TestSessionReportsFailuresAndContinues(t *testing.T) {
	eng := &fakeEngine{state: model.StateNotActivated}
	eng.activate = func(code, seat, edition string) error {
		return engine.NewAPIError(400, "InvalidCode", "activation code is invalid")
	}
	// 3 = activate with code
	s, out := newTestSession(eng, "3", "BAD-CODE", "", "", "0")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "error: Activation failed: status: 400, code: InvalidCode, message: activation code is invalid"
	if !out.has(want) {
		t.Fatalf("missing %q in %v", want, out.lines)
	}
	if len(out.menus) != 2 {
		t.Fatalf("loop should continue after a failure, menus: %d", len(out.menus))
	}
}

func TestSessionInitializeFailureIsReported(t *testing.T) {
	eng := &fakeEngine{initErr: errors.New("storage locked")}
	s, out := newTestSession(eng)
	s.Initialize(context.Background())
	if !out.has("error: Unexpected error in Initialization failed: storage locked") {
		t.Fatalf("initialize failure not reported: %v", out.lines)
	}
}

// The lifecycle below drives a stateful fake through activation, checkout,
// lease refresh and deactivation, re-reading the menu after each step.
func TestSessionScenario(t *testing.T) {
	expiry := time.Date(2026, 2, 1, 12, 0, 0, 0, time.Local)
	pool := &fakePool{features: sampleFeatures()}
	eng := &fakeEngine{state: model.StateNotActivated, deactivateOK: true}
	eng.activate = func(code, seat, edition string) error {
		if code != "CODE-1" || seat != "desk" || edition != "" {
			t.Fatalf("unexpected activation input %q %q %q", code, seat, edition)
		}
		eng.state = model.StateActive
		eng.info = model.ActivationInfo{Mode: model.ModeOnline, LeaseExpiry: timePtr(expiry)}
		eng.features = pool
		return nil
	}
	eng.refreshLease = func() (bool, error) {
		eng.info.LeaseExpiry = timePtr(expiry.Add(time.Hour))
		return true, nil
	}

	s, out := newTestSession(eng,
		"3", "CODE-1", " desk ", "", // activate with code
		"4", "B", "2", // checkout
		"7", // refresh lease
		"8", // deactivate
		"q",
	)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pool.calls) != 1 || pool.calls[0] != "checkout B 2" {
		t.Fatalf("unexpected pool calls: %v", pool.calls)
	}
	for _, want := range []string{
		"success: Activation successful.",
		"success: Feature successfully checked out!",
		"success: Activation lease successfully refreshed from [2026-02-01 12:00:00] to [2026-02-01 13:00:00]",
		"success: Deactivation successful.",
	} {
		if !out.has(want) {
			t.Fatalf("missing %q in %v", want, out.lines)
		}
	}
	if len(out.menus[0]) != 5 || len(out.menus[1]) != 9 {
		t.Fatalf("menus did not follow state: %d then %d", len(out.menus[0]), len(out.menus[1]))
	}
}
