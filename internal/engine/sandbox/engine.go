// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sandbox is an in-process activation engine backed by a simulated
// licensing server. Both sides keep their state in the shared store, so the
// console and the portal subcommands can run as separate processes.
package sandbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/internal/model"
	"github.com/toeirei/activation-console/internal/storage"
)

// Options configures an Engine.
type Options struct {
	APIURL              string
	TenantID            string
	ProductID           string
	SeatID              string
	TenantRsaKeyModulus string

	Store   *storage.Store
	Catalog *Catalog
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Engine implements engine.Engine against a Server.
type Engine struct {
	opts   Options
	server *Server
	local  *storage.ActivationStorage
	sealer sealer
	now    func() time.Time

	mu          sync.Mutex
	state       model.ActivationState
	info        model.ActivationInfo
	entitlement *model.Entitlement
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine. It does not touch storage until Initialize.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("sandbox: a store is required")
	}
	if strings.TrimSpace(opts.SeatID) == "" {
		return nil, errors.New("sandbox: a seat ID is required")
	}
	if opts.Catalog == nil {
		c, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		opts.Catalog = c
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		opts:   opts,
		server: NewServer(opts.Store, opts.Catalog, now),
		local:  storage.NewActivationStorage(opts.Store),
		sealer: newSealer(opts.TenantRsaKeyModulus),
		now:    now,
		state:  model.StateNotActivated,
	}, nil
}

// Server exposes the backend, for the portal.
func (e *Engine) Server() *Server { return e.server }

// Initialize restores the local snapshot and derives the state from it.
func (e *Engine) Initialize(ctx context.Context) error {
	data, err := e.local.Load(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adopt(data)
	logging.Debugf("sandbox: initialized from %s for %s, state %s", e.local.StorageID(), e.opts.APIURL, e.state)
	return nil
}

// adopt replaces the in-memory view with a snapshot. Caller holds mu.
func (e *Engine) adopt(data model.PersistentData) {
	e.entitlement = data.Entitlement
	if data.Activation == nil {
		e.info = model.ActivationInfo{}
		e.state = model.StateNotActivated
		return
	}
	e.info = *data.Activation
	e.state = evaluate(&e.info, e.entitlement, e.now())
	e.info.State = e.state
}

// commit stores and adopts a server snapshot.
func (e *Engine) commit(ctx context.Context, snap Snapshot) error {
	ent := snap.Entitlement
	info := snap.Info
	data := model.PersistentData{Entitlement: &ent, Activation: &info}
	if err := e.local.Save(ctx, data); err != nil {
		return err
	}
	e.adopt(data)
	return nil
}

func (e *Engine) clear(ctx context.Context) error {
	if err := e.local.Clear(ctx); err != nil {
		return err
	}
	e.adopt(model.PersistentData{})
	return nil
}

func (e *Engine) activated() bool {
	return e.info.ActivationID != ""
}

// Activate activates the seat online with an activation code.
func (e *Engine) Activate(ctx context.Context, creds engine.Credentials, seatName, editionID string) (model.ActivationInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == model.StateActive || e.state == model.StateLeaseExpired {
		return model.ActivationInfo{}, engine.NewSDKError("Activation is already in %s state", e.state)
	}
	if strings.TrimSpace(creds.ActivationCode) == "" {
		return model.ActivationInfo{}, engine.NewSDKError("Activation code is required")
	}
	snap, err := e.server.activate(ctx, activateRequest{
		code: creds.ActivationCode, seatID: e.opts.SeatID, seatName: seatName,
		editionID: editionID, mode: model.ModeOnline, productID: e.opts.ProductID,
	})
	if err != nil {
		return model.ActivationInfo{}, err
	}
	if err := e.commit(ctx, snap); err != nil {
		return model.ActivationInfo{}, err
	}
	return e.info, nil
}

// GenerateOfflineActivationRequestToken builds the request the operator takes
// to the portal. The code is only checked by the portal.
func (e *Engine) GenerateOfflineActivationRequestToken(ctx context.Context, code, seatName string, opts engine.OfflineRequestOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == model.StateActive || e.state == model.StateLeaseExpired {
		return "", engine.NewSDKError("Activation is already in %s state", e.state)
	}
	if strings.TrimSpace(code) == "" {
		return "", engine.NewSDKError("Activation code is required")
	}
	return e.sealer.seal(tokenPayload{
		Kind:      kindActivationRequest,
		TenantID:  e.opts.TenantID,
		ProductID: e.opts.ProductID,
		SeatID:    e.opts.SeatID,
		SeatName:  seatName,
		Code:      strings.TrimSpace(code),
		EditionID: opts.EditionID,
		IssuedAt:  e.now().UTC(),
	})
}

// ActivateOffline applies a portal activation response.
func (e *Engine) ActivateOffline(ctx context.Context, responseToken string) (model.ActivationInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.sealer.open(responseToken, kindActivationResponse)
	if err != nil {
		return model.ActivationInfo{}, engine.NewSDKError("Offline activation response token is invalid: %v", err)
	}
	if err := e.checkAudience(p); err != nil {
		return model.ActivationInfo{}, err
	}
	if p.Activation == nil || p.Entitlement == nil {
		return model.ActivationInfo{}, engine.NewSDKError("Offline activation response token carries no activation")
	}
	info := *p.Activation
	ent := *p.Entitlement
	data := model.PersistentData{Entitlement: &ent, Activation: &info}
	if err := e.local.Save(ctx, data); err != nil {
		return model.ActivationInfo{}, err
	}
	e.adopt(data)
	return e.info, nil
}

func (e *Engine) checkAudience(p tokenPayload) error {
	if p.TenantID != e.opts.TenantID || p.ProductID != e.opts.ProductID {
		return engine.NewSDKError("Token was issued for a different tenant or product")
	}
	if p.SeatID != e.opts.SeatID {
		return engine.NewSDKError("Token was issued for seat %s, this seat is %s", p.SeatID, e.opts.SeatID)
	}
	return nil
}

// PullRemoteState replaces the local view with the server's.
func (e *Engine) PullRemoteState(ctx context.Context) (model.ActivationInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() {
		return model.ActivationInfo{}, engine.NewSDKError("There is no activation to pull from the server")
	}
	if e.info.Mode.IsOffline() {
		return model.ActivationInfo{}, engine.NewSDKError("Remote state is not available for offline activations")
	}
	snap, err := e.server.Get(ctx, e.info.ActivationID, e.opts.ProductID)
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		// The seat was released elsewhere; mirror that locally.
		if cerr := e.clear(ctx); cerr != nil {
			return model.ActivationInfo{}, cerr
		}
		return e.info, nil
	}
	if err != nil {
		return model.ActivationInfo{}, err
	}
	if err := e.commit(ctx, snap); err != nil {
		return model.ActivationInfo{}, err
	}
	return e.info, nil
}

// PullPersistedState reads the local snapshot.
func (e *Engine) PullPersistedState(ctx context.Context) (model.PersistentData, error) {
	return e.local.Load(ctx)
}

// RefreshLease extends the online lease.
func (e *Engine) RefreshLease(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() {
		return false, engine.NewSDKError("Cannot refresh the lease of an inactive activation")
	}
	if e.info.Mode.IsOffline() {
		return false, engine.NewSDKError("Offline activations are refreshed with a portal token")
	}
	refreshed, snap, err := e.server.refresh(ctx, e.info.ActivationID, e.opts.ProductID)
	if err != nil {
		return false, err
	}
	if err := e.commit(ctx, snap); err != nil {
		return false, err
	}
	return refreshed, nil
}

// RefreshLeaseOffline applies a portal refresh token.
func (e *Engine) RefreshLeaseOffline(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() || !e.info.Mode.IsOffline() {
		return engine.NewSDKError("There is no offline activation to refresh")
	}
	p, err := e.sealer.open(token, kindLeaseRefresh)
	if err != nil {
		return engine.NewSDKError("Offline refresh token is invalid: %v", err)
	}
	if err := e.checkAudience(p); err != nil {
		return err
	}
	if p.ActivationID != e.info.ActivationID {
		return engine.NewSDKError("Refresh token belongs to activation %s", p.ActivationID)
	}
	if p.LeaseExpiry == nil {
		return engine.NewSDKError("Refresh token carries no lease expiry")
	}

	info := e.info
	info.LeaseExpiry = p.LeaseExpiry
	data := model.PersistentData{Entitlement: e.entitlement, Activation: &info}
	if err := e.local.Save(ctx, data); err != nil {
		return err
	}
	e.adopt(data)
	return nil
}

// Deactivate releases an online seat.
func (e *Engine) Deactivate(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() {
		return false, engine.NewSDKError("There is no activation to deactivate")
	}
	if e.info.Mode.IsOffline() {
		return false, engine.NewSDKError("Offline activations are deactivated through the portal")
	}
	if err := e.server.deactivate(ctx, e.info.ActivationID); err != nil {
		return false, err
	}
	if err := e.clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// DeactivateOffline drops the local offline activation and returns the token
// the portal needs to release the seat.
func (e *Engine) DeactivateOffline(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() || !e.info.Mode.IsOffline() {
		return "", engine.NewSDKError("There is no offline activation to deactivate")
	}
	token, err := e.sealer.seal(tokenPayload{
		Kind:         kindDeactivation,
		TenantID:     e.opts.TenantID,
		ProductID:    e.opts.ProductID,
		SeatID:       e.opts.SeatID,
		ActivationID: e.info.ActivationID,
		IssuedAt:     e.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := e.clear(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// GetActivationEntitlement returns the entitlement behind the activation.
// Online activations ask the server; offline ones use the snapshot.
func (e *Engine) GetActivationEntitlement(ctx context.Context) (model.Entitlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.activated() {
		return model.Entitlement{}, engine.NewSDKError("There is no activation")
	}
	if e.info.Mode.IsOffline() {
		if e.entitlement == nil {
			return model.Entitlement{}, nil
		}
		return *e.entitlement, nil
	}
	snap, err := e.server.Get(ctx, e.info.ActivationID, e.opts.ProductID)
	if err != nil {
		return model.Entitlement{}, err
	}
	return snap.Entitlement, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() model.ActivationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activated() {
		// leases run out while the session sits in the menu
		e.state = evaluate(&e.info, e.entitlement, e.now())
		e.info.State = e.state
	}
	return e.state
}

// ActivationInfo returns a copy of the current activation.
func (e *Engine) ActivationInfo() model.ActivationInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := e.info
	info.Features = append([]model.ActivationFeature(nil), e.info.Features...)
	info.Attributes = append([]model.ActivationAttribute(nil), e.info.Attributes...)
	return info
}

// Features hands out an ActiveFeatureSet only for an active online activation.
func (e *Engine) Features() engine.FeatureSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activated() {
		e.state = evaluate(&e.info, e.entitlement, e.now())
		e.info.State = e.state
	}
	if e.state == model.StateActive && !e.info.Mode.IsOffline() {
		return &activeFeatures{e: e}
	}
	return engine.ReadonlyFeatures(append([]model.ActivationFeature(nil), e.info.Features...))
}

// activeFeatures routes feature operations to the server and re-reads the
// activation afterwards.
type activeFeatures struct {
	e *Engine
}

func (f *activeFeatures) Features() []model.ActivationFeature {
	return f.e.ActivationInfo().Features
}

func (f *activeFeatures) CheckoutFeature(ctx context.Context, key string, amount int64) error {
	return f.do(ctx, func(id string) error { return f.e.server.checkout(ctx, id, key, amount) })
}

func (f *activeFeatures) ReturnFeature(ctx context.Context, key string, amount int64) error {
	return f.do(ctx, func(id string) error { return f.e.server.returnFeature(ctx, id, key, amount) })
}

func (f *activeFeatures) TrackUsage(ctx context.Context, key string) error {
	return f.do(ctx, func(id string) error { return f.e.server.trackUsage(ctx, id, key) })
}

func (f *activeFeatures) do(ctx context.Context, call func(activationID string) error) error {
	e := f.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != model.StateActive || e.info.Mode.IsOffline() {
		return engine.NewSDKError("Features can only be used on an active online activation")
	}
	if err := call(e.info.ActivationID); err != nil {
		return err
	}
	snap, err := e.server.Get(ctx, e.info.ActivationID, e.opts.ProductID)
	if err != nil {
		return err
	}
	return e.commit(ctx, snap)
}
