// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/internal/model"
	"github.com/toeirei/activation-console/internal/storage"
)

// ServerKey is the storage record holding the simulated backend state.
const ServerKey = "sandbox/server"

// seat is a server-side activation.
type seat struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	SeatID      string               `json:"seat_id"`
	SeatName    string               `json:"seat_name,omitempty"`
	EditionID   string               `json:"edition_id,omitempty"`
	Mode        model.ActivationMode `json:"mode"`
	ActivatedAt time.Time            `json:"activated_at"`
	LeaseExpiry *time.Time           `json:"lease_expiry,omitempty"`
	Usage       map[string]*usage    `json:"usage,omitempty"`
}

// usage tracks consumption of one feature.
type usage struct {
	Active      int64      `json:"active"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
	Uses        int64      `json:"uses,omitempty"`
}

type serverState struct {
	Seats map[string]*seat `json:"seats"`
}

// Server is the licensing backend the sandbox engine and the portal talk to.
// Every call loads the state, mutates it and writes it back, so several
// processes sharing one store see each other's changes.
type Server struct {
	mu      sync.Mutex
	store   *storage.Store
	catalog *Catalog
	now     func() time.Time
}

// NewServer creates a backend over store.
func NewServer(store *storage.Store, catalog *Catalog, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{store: store, catalog: catalog, now: now}
}

func (s *Server) load(ctx context.Context) (*serverState, error) {
	st := &serverState{Seats: map[string]*seat{}}
	raw, err := s.store.Get(ctx, ServerKey)
	if errors.Is(err, storage.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode sandbox server state: %w", err)
	}
	if st.Seats == nil {
		st.Seats = map[string]*seat{}
	}
	return st, nil
}

func (s *Server) save(ctx context.Context, st *serverState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode sandbox server state: %w", err)
	}
	return s.store.Put(ctx, ServerKey, raw)
}

// update runs fn under the server lock and persists the result unless fn fails.
func (s *Server) update(ctx context.Context, fn func(st *serverState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.save(ctx, st)
}

// Snapshot is what the server reports about an activation.
type Snapshot struct {
	ActivationID string
	State        model.ActivationState
	Info         model.ActivationInfo
	Entitlement  model.Entitlement
}

// activateRequest carries everything needed to create a seat.
type activateRequest struct {
	code, seatID, seatName, editionID string
	mode                              model.ActivationMode
	productID                         string
}

func (s *Server) activate(ctx context.Context, req activateRequest) (Snapshot, error) {
	entry, ok := s.catalog.Lookup(req.code)
	if !ok {
		return Snapshot{}, engine.NewAPIError(404, "ActivationCodeNotFound", "activation code %q was not found", req.code)
	}
	if !entry.allowsEdition(req.editionID) {
		return Snapshot{}, engine.NewAPIError(400, "InvalidEdition", "edition %q is not available for this entitlement", req.editionID)
	}
	period := entry.Entitlement.LeasePeriod
	if req.mode == model.ModeOffline {
		period = entry.Entitlement.OfflineLeasePeriod
		if !period.IsSet() {
			return Snapshot{}, engine.NewAPIError(400, "OfflineLeasePeriodNotSet", "the entitlement has no offline lease period")
		}
	}

	var snap Snapshot
	err := s.update(ctx, func(st *serverState) error {
		now := s.now()
		var existing *seat
		used := 0
		for _, a := range st.Seats {
			if normalizeCode(a.Code) != normalizeCode(entry.Code) {
				continue
			}
			if a.SeatID == req.seatID {
				existing = a
				continue
			}
			used++
		}
		if existing == nil && entry.Seats > 0 && used >= entry.Seats {
			return engine.NewAPIError(409, "NoSeatsAvailable", "all %d seats of the entitlement are in use", entry.Seats)
		}

		a := existing
		if a == nil {
			a = &seat{ID: uuid.NewString(), Code: entry.Code, SeatID: req.seatID, ActivatedAt: now, Usage: map[string]*usage{}}
			st.Seats[a.ID] = a
		}
		a.SeatName = req.seatName
		a.EditionID = req.editionID
		a.Mode = req.mode
		if period.IsSet() {
			exp := period.AddTo(now)
			a.LeaseExpiry = &exp
		} else {
			a.LeaseExpiry = nil
		}
		snap = s.snapshot(entry, a, req.productID, now)
		logging.Debugf("sandbox: seat %s activated for %s (%s)", a.SeatID, entry.Code, a.Mode)
		return nil
	})
	return snap, err
}

// Get reports the current server view of an activation.
func (s *Server) Get(ctx context.Context, activationID, productID string) (Snapshot, error) {
	var snap Snapshot
	err := s.update(ctx, func(st *serverState) error {
		a, entry, err := s.find(st, activationID)
		if err != nil {
			return err
		}
		now := s.now()
		rollUsagePeriods(entry, a, now)
		snap = s.snapshot(entry, a, productID, now)
		return nil
	})
	return snap, err
}

// refresh extends an online lease. It reports false when the entitlement no
// longer allows a refresh.
func (s *Server) refresh(ctx context.Context, activationID, productID string) (bool, Snapshot, error) {
	var (
		snap      Snapshot
		refreshed bool
	)
	err := s.update(ctx, func(st *serverState) error {
		a, entry, err := s.find(st, activationID)
		if err != nil {
			return err
		}
		now := s.now()
		period := entry.Entitlement.LeasePeriod
		if a.Mode == model.ModeOffline {
			period = entry.Entitlement.OfflineLeasePeriod
		}
		if period.IsSet() && !entitlementExpired(entry, a, now) {
			exp := period.AddTo(now)
			a.LeaseExpiry = &exp
			refreshed = true
		}
		snap = s.snapshot(entry, a, productID, now)
		return nil
	})
	return refreshed, snap, err
}

func (s *Server) deactivate(ctx context.Context, activationID string) error {
	return s.update(ctx, func(st *serverState) error {
		if _, _, err := s.find(st, activationID); err != nil {
			return err
		}
		delete(st.Seats, activationID)
		logging.Debugf("sandbox: activation %s released", activationID)
		return nil
	})
}

func (s *Server) checkout(ctx context.Context, activationID, key string, amount int64) error {
	return s.mutateFeature(ctx, activationID, key, func(f *FeatureEntry, u *usage, now time.Time) error {
		if f.Type == model.FeatureBool {
			return engine.NewAPIError(400, "InvalidFeatureType", "feature %q cannot be checked out", key)
		}
		if f.Total != nil && u.Active+amount > *f.Total {
			return engine.NewAPIError(409, "InsufficientAvailability", "only %d of feature %q available", *f.Total-u.Active, key)
		}
		u.Active += amount
		return nil
	})
}

func (s *Server) returnFeature(ctx context.Context, activationID, key string, amount int64) error {
	return s.mutateFeature(ctx, activationID, key, func(f *FeatureEntry, u *usage, now time.Time) error {
		if f.Type != model.FeatureElementPool {
			return engine.NewAPIError(400, "InvalidFeatureType", "feature %q is not an element pool", key)
		}
		if amount > u.Active {
			return engine.NewAPIError(400, "ReturnExceedsCheckedOut", "cannot return %d of feature %q, %d checked out", amount, key, u.Active)
		}
		u.Active -= amount
		return nil
	})
}

func (s *Server) trackUsage(ctx context.Context, activationID, key string) error {
	return s.mutateFeature(ctx, activationID, key, func(f *FeatureEntry, u *usage, now time.Time) error {
		if f.Type != model.FeatureBool {
			return engine.NewAPIError(400, "InvalidFeatureType", "usage of feature %q cannot be tracked", key)
		}
		u.Uses++
		u.LastUsed = &now
		return nil
	})
}

func (s *Server) mutateFeature(ctx context.Context, activationID, key string, fn func(*FeatureEntry, *usage, time.Time) error) error {
	return s.update(ctx, func(st *serverState) error {
		a, entry, err := s.find(st, activationID)
		if err != nil {
			return err
		}
		now := s.now()
		if a.LeaseExpiry != nil && now.After(*a.LeaseExpiry) {
			return engine.NewAPIError(403, "LeaseExpired", "the activation lease has expired")
		}
		f, ok := entry.feature(key)
		if !ok {
			return engine.NewAPIError(404, "FeatureNotFound", "feature %q is not part of the entitlement", key)
		}
		rollUsagePeriods(entry, a, now)
		return fn(f, usageOf(a, f, now), now)
	})
}

func (s *Server) find(st *serverState, activationID string) (*seat, *CodeEntry, error) {
	a, ok := st.Seats[activationID]
	if !ok {
		return nil, nil, engine.NewAPIError(404, "ActivationNotFound", "activation %s was not found", activationID)
	}
	entry, ok := s.catalog.Lookup(a.Code)
	if !ok {
		return nil, nil, engine.NewAPIError(410, "EntitlementRemoved", "the entitlement of activation %s no longer exists", activationID)
	}
	return a, entry, nil
}

// Seats lists the server-side activations, oldest first.
func (s *Server) Seats(ctx context.Context) ([]SeatSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SeatSummary, 0, len(st.Seats))
	for _, a := range st.Seats {
		out = append(out, SeatSummary{ActivationID: a.ID, Code: a.Code, SeatID: a.SeatID, Mode: a.Mode, LeaseExpiry: a.LeaseExpiry, ActivatedAt: a.ActivatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivatedAt.Before(out[j].ActivatedAt) })
	return out, nil
}

// SeatSummary is a listing row for the portal.
type SeatSummary struct {
	ActivationID string
	Code         string
	SeatID       string
	Mode         model.ActivationMode
	LeaseExpiry  *time.Time
	ActivatedAt  time.Time
}

func (s *Server) snapshot(entry *CodeEntry, a *seat, productID string, now time.Time) Snapshot {
	ent := entry.Entitlement
	ent.SnapshotDate = now

	info := model.ActivationInfo{
		ActivationID: a.ID,
		Mode:         a.Mode,
		ProductID:    model.StringPtr(productID),
		SeatID:       model.StringPtr(a.SeatID),
		LeaseExpiry:  a.LeaseExpiry,
		Features:     featuresOf(entry, a, now),
		Attributes:   append(entry.attributes(), activatedAtAttribute(a.ActivatedAt)),
	}
	if a.SeatName != "" {
		info.SeatName = model.StringPtr(a.SeatName)
	}
	info.State = evaluate(&info, &ent, now)
	return Snapshot{ActivationID: a.ID, State: info.State, Info: info, Entitlement: ent}
}

// activatedAtKey is the attribute carrying the activation start, which the
// license duration counts from.
const activatedAtKey = "activated_at"

func activatedAtAttribute(t time.Time) model.ActivationAttribute {
	return model.ActivationAttribute{Key: activatedAtKey, Type: "date", Value: model.StringPtr(t.UTC().Format(time.RFC3339))}
}

func activatedAt(info *model.ActivationInfo) (time.Time, bool) {
	for _, a := range info.Attributes {
		if a.Key == activatedAtKey && a.Value != nil {
			t, err := time.Parse(time.RFC3339, *a.Value)
			return t, err == nil
		}
	}
	return time.Time{}, false
}

func entitlementExpired(entry *CodeEntry, a *seat, now time.Time) bool {
	d := entry.Entitlement.Plan.LicenseDuration
	return d.IsSet() && now.After(d.AddTo(a.ActivatedAt))
}

// evaluate derives the lifecycle state of an activation snapshot.
func evaluate(info *model.ActivationInfo, ent *model.Entitlement, now time.Time) model.ActivationState {
	if info == nil {
		return model.StateNotActivated
	}
	if ent != nil && ent.Plan.LicenseDuration.IsSet() {
		if start, ok := activatedAt(info); ok && now.After(ent.Plan.LicenseDuration.AddTo(start)) {
			return model.StateEntitlementNotActive
		}
	}
	if info.LeaseExpiry != nil && now.After(*info.LeaseExpiry) {
		return model.StateLeaseExpired
	}
	return model.StateActive
}

func usageOf(a *seat, f *FeatureEntry, now time.Time) *usage {
	if a.Usage == nil {
		a.Usage = map[string]*usage{}
	}
	u, ok := a.Usage[f.Key]
	if !ok {
		u = &usage{}
		if f.Type == model.FeatureUsageCount && f.UsagePeriod.IsSet() {
			start := a.ActivatedAt
			u.PeriodStart = &start
		}
		a.Usage[f.Key] = u
	}
	return u
}

// rollUsagePeriods resets usage counters whose period has elapsed.
func rollUsagePeriods(entry *CodeEntry, a *seat, now time.Time) {
	for i := range entry.Features {
		f := &entry.Features[i]
		if f.Type != model.FeatureUsageCount || !f.UsagePeriod.IsSet() {
			continue
		}
		u := usageOf(a, f, now)
		if u.PeriodStart == nil {
			start := a.ActivatedAt
			u.PeriodStart = &start
		}
		next := f.UsagePeriod.AddTo(*u.PeriodStart)
		if !now.Before(next) {
			for !now.Before(next) {
				*u.PeriodStart = next
				after := f.UsagePeriod.AddTo(next)
				if !after.After(next) {
					break
				}
				next = after
			}
			u.Active = 0
		}
	}
}

func featuresOf(entry *CodeEntry, a *seat, now time.Time) []model.ActivationFeature {
	out := make([]model.ActivationFeature, 0, len(entry.Features))
	for i := range entry.Features {
		f := &entry.Features[i]
		feat := model.ActivationFeature{Key: f.Key, Type: f.Type}
		if f.Type != model.FeatureBool {
			var active int64
			if u, ok := a.Usage[f.Key]; ok {
				active = u.Active
				if u.PeriodStart != nil && f.UsagePeriod.IsSet() {
					start := *u.PeriodStart
					next := f.UsagePeriod.AddTo(start)
					feat.CurrentUsagePeriodStart = &start
					feat.NextUsagePeriodStart = &next
				}
			}
			feat.Active = model.Int64Ptr(active)
			if f.Total != nil {
				feat.Total = model.Int64Ptr(*f.Total)
				feat.Available = model.Int64Ptr(*f.Total - active)
			}
		}
		out = append(out, feat)
	}
	return out
}
