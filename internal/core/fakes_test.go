// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/model"
)

// fakeEngine is a scriptable engine. Hooks left nil succeed with zero values.
type fakeEngine struct {
	state     model.ActivationState
	info      model.ActivationInfo
	persisted model.PersistentData
	features  engine.FeatureSet

	initErr         error
	refreshLease    func() (bool, error)
	refreshOffline  func(token string) error
	deactivateOK    bool
	deactivateToken string
	entitlement     model.Entitlement
	activate        func(code, seat, edition string) error
	activateOffline func(token string) error
	requestToken    string

	calls []string
}

func (e *fakeEngine) record(name string) { e.calls = append(e.calls, name) }

func (e *fakeEngine) Initialize(context.Context) error {
	e.record("Initialize")
	return e.initErr
}

func (e *fakeEngine) Activate(_ context.Context, creds engine.Credentials, seat, edition string) (model.ActivationInfo, error) {
	e.record("Activate")
	if e.activate != nil {
		if err := e.activate(creds.ActivationCode, seat, edition); err != nil {
			return model.ActivationInfo{}, err
		}
	}
	return e.info, nil
}

func (e *fakeEngine) GenerateOfflineActivationRequestToken(_ context.Context, code, seat string, _ engine.OfflineRequestOptions) (string, error) {
	e.record("GenerateOfflineActivationRequestToken")
	return e.requestToken, nil
}

func (e *fakeEngine) ActivateOffline(_ context.Context, token string) (model.ActivationInfo, error) {
	e.record("ActivateOffline")
	if e.activateOffline != nil {
		if err := e.activateOffline(token); err != nil {
			return model.ActivationInfo{}, err
		}
	}
	return e.info, nil
}

func (e *fakeEngine) PullRemoteState(context.Context) (model.ActivationInfo, error) {
	e.record("PullRemoteState")
	return e.info, nil
}

func (e *fakeEngine) PullPersistedState(context.Context) (model.PersistentData, error) {
	e.record("PullPersistedState")
	return e.persisted, nil
}

func (e *fakeEngine) RefreshLease(context.Context) (bool, error) {
	e.record("RefreshLease")
	if e.refreshLease != nil {
		return e.refreshLease()
	}
	return true, nil
}

func (e *fakeEngine) RefreshLeaseOffline(_ context.Context, token string) error {
	e.record("RefreshLeaseOffline")
	if e.refreshOffline != nil {
		return e.refreshOffline(token)
	}
	return nil
}

func (e *fakeEngine) Deactivate(context.Context) (bool, error) {
	e.record("Deactivate")
	return e.deactivateOK, nil
}

func (e *fakeEngine) DeactivateOffline(context.Context) (string, error) {
	e.record("DeactivateOffline")
	return e.deactivateToken, nil
}

func (e *fakeEngine) GetActivationEntitlement(context.Context) (model.Entitlement, error) {
	e.record("GetActivationEntitlement")
	return e.entitlement, nil
}

func (e *fakeEngine) State() model.ActivationState         { return e.state }
func (e *fakeEngine) ActivationInfo() model.ActivationInfo { return e.info }

func (e *fakeEngine) Features() engine.FeatureSet {
	if e.features == nil {
		return engine.ReadonlyFeatures(e.info.Features)
	}
	return e.features
}

// fakePool is an ActiveFeatureSet over a mutable list.
type fakePool struct {
	features []model.ActivationFeature
	err      error
	calls    []string
}

func (p *fakePool) Features() []model.ActivationFeature { return p.features }

func (p *fakePool) CheckoutFeature(_ context.Context, key string, amount int64) error {
	p.calls = append(p.calls, fmt.Sprintf("checkout %s %d", key, amount))
	return p.err
}

func (p *fakePool) ReturnFeature(_ context.Context, key string, amount int64) error {
	p.calls = append(p.calls, fmt.Sprintf("return %s %d", key, amount))
	return p.err
}

func (p *fakePool) TrackUsage(_ context.Context, key string) error {
	p.calls = append(p.calls, "usage "+key)
	return p.err
}

// fakePrompter answers from a fixed script and reports io.EOF when it runs out.
type fakePrompter struct {
	answers []string
	prompts []string
}

func newPrompter(answers ...string) *fakePrompter { return &fakePrompter{answers: answers} }

func (p *fakePrompter) next(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *fakePrompter) Line(prompt string) (string, error)  { return p.next(prompt) }
func (p *fakePrompter) Token(prompt string) (string, error) { s, err := p.next(prompt); return strings.TrimSpace(s), err }

func (p *fakePrompter) Confirm(message string) (bool, error) {
	s, err := p.next(message)
	return s == "y", err
}

// fakePresenter records everything as "kind: text" lines.
type fakePresenter struct {
	lines []string
	menus [][]Action
}

func (p *fakePresenter) add(format string, args ...any) {
	p.lines = append(p.lines, fmt.Sprintf(format, args...))
}

func (p *fakePresenter) Info(msg string)    { p.add("info: %s", msg) }
func (p *fakePresenter) Success(msg string) { p.add("success: %s", msg) }
func (p *fakePresenter) Warning(msg string) { p.add("warning: %s", msg) }
func (p *fakePresenter) Error(msg string)   { p.add("error: %s", msg) }

func (p *fakePresenter) Status(state model.ActivationState, mode model.ActivationMode) {
	p.add("status: %s/%s", state, mode)
}

func (p *fakePresenter) Menu(actions []Action) {
	p.menus = append(p.menus, actions)
	p.add("menu: %d", len(actions))
}

func (p *fakePresenter) Features(features []model.ActivationFeature, highlight string) {
	keys := make([]string, 0, len(features))
	for _, f := range features {
		keys = append(keys, f.Key)
	}
	p.add("features: %s highlight=%s", strings.Join(keys, ","), highlight)
}

func (p *fakePresenter) Activation(state model.ActivationState, _ model.ActivationInfo) {
	p.add("activation: %s", state)
}

func (p *fakePresenter) Persisted(data model.PersistentData) {
	p.add("persisted: empty=%t", data.IsEmpty())
}

func (p *fakePresenter) Entitlement(e model.Entitlement) { p.add("entitlement: %s", e.OfferingName) }

func (p *fakePresenter) Token(label, token string) { p.add("token: %s", token) }

func (p *fakePresenter) has(prefix string) bool {
	for _, l := range p.lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func (p *fakePresenter) last() string {
	if len(p.lines) == 0 {
		return ""
	}
	return p.lines[len(p.lines)-1]
}

func timePtr(t time.Time) *time.Time { return &t }
