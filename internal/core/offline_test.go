// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/toeirei/activation-console/internal/model"
)

func plainEnv(eng *fakeEngine, answers ...string) (*Env, *fakePresenter) {
	out := &fakePresenter{}
	return &Env{Engine: eng, Prompt: newPrompter(answers...), Out: out}, out
}

func TestGenerateOfflineRequestWarnsFirst(t *testing.T) {
	eng := &fakeEngine{requestToken: "REQ"}
	env, out := plainEnv(eng, "CODE", "")
	if err := runGenerateOfflineRequest(context.Background(), env); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(out.lines) == 0 || !strings.HasPrefix(out.lines[0], "warning: ") || !strings.Contains(out.lines[0], "Offline Lease Period") {
		t.Fatalf("advisory must come first: %v", out.lines)
	}
	if out.last() != "token: REQ" {
		t.Fatalf("token not shown: %v", out.lines)
	}
}

func TestGenerateOfflineRequestWarnsEvenWhenCodeMissing(t *testing.T) {
	eng := &fakeEngine{}
	env, out := plainEnv(eng, "")
	err := runGenerateOfflineRequest(context.Background(), env)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != KindValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if !out.has("warning: ") {
		t.Fatalf("advisory missing")
	}
	if len(eng.calls) != 0 {
		t.Fatalf("engine was called: %v", eng.calls)
	}
}

func TestActivateOfflineRepullsPersisted(t *testing.T) {
	eng := &fakeEngine{persisted: model.PersistentData{Activation: &model.ActivationInfo{Mode: model.ModeOffline}}}
	var got string
	eng.activateOffline = func(token string) error { got = token; return nil }
	env, out := plainEnv(eng, " RESP ")
	if err := runActivateOffline(context.Background(), env); err != nil {
		t.Fatalf("activate offline: %v", err)
	}
	if got != "RESP" {
		t.Fatalf("token: %q", got)
	}
	if strings.Join(eng.calls, ",") != "ActivateOffline,PullPersistedState" {
		t.Fatalf("calls: %v", eng.calls)
	}
	if !out.has("persisted: empty=false") || out.last() != "success: Offline activation successful." {
		t.Fatalf("output: %v", out.lines)
	}
}

func TestDeactivateOfflineEmptyToken(t *testing.T) {
	env, out := plainEnv(&fakeEngine{})
	if err := runDeactivateOffline(context.Background(), env); err != nil {
		t.Fatalf("deactivate offline: %v", err)
	}
	if out.last() != "error: Offline deactivation failed." {
		t.Fatalf("output: %v", out.lines)
	}
}

func TestDeactivateReportsFalse(t *testing.T) {
	env, out := plainEnv(&fakeEngine{deactivateOK: false})
	if err := runDeactivate(context.Background(), env); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if out.last() != "error: Deactivation failed." {
		t.Fatalf("output: %v", out.lines)
	}
}

func TestPullPersistedEmptyIsNotAFailure(t *testing.T) {
	env, out := plainEnv(&fakeEngine{})
	if err := runPullPersisted(context.Background(), env); err != nil {
		t.Fatalf("pull persisted: %v", err)
	}
	if out.last() != "error: No persistent data found." {
		t.Fatalf("output: %v", out.lines)
	}
}

func TestGetEntitlement(t *testing.T) {
	env, out := plainEnv(&fakeEngine{})
	if err := runGetEntitlement(context.Background(), env); err != nil {
		t.Fatalf("entitlement: %v", err)
	}
	if out.last() != "error: No activation entitlement found." {
		t.Fatalf("output: %v", out.lines)
	}

	env, out = plainEnv(&fakeEngine{entitlement: model.Entitlement{OfferingName: "Pro"}})
	if err := runGetEntitlement(context.Background(), env); err != nil {
		t.Fatalf("entitlement: %v", err)
	}
	if out.last() != "entitlement: Pro" {
		t.Fatalf("output: %v", out.lines)
	}
}
