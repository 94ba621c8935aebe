// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/internal/model"
)

// Portal is the End User Portal side of the offline exchange.
type Portal struct {
	server    *Server
	sealer    sealer
	tenantID  string
	productID string
	now       func() time.Time
}

// NewPortal creates a portal over the same backend an Engine with opts uses.
// SeatID is not needed.
func NewPortal(opts Options) (*Portal, error) {
	if opts.Store == nil {
		return nil, errors.New("sandbox: a store is required")
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
	return &Portal{
		server:    NewServer(opts.Store, opts.Catalog, now),
		sealer:    newSealer(opts.TenantRsaKeyModulus),
		tenantID:  opts.TenantID,
		productID: opts.ProductID,
		now:       now,
	}, nil
}

// Server exposes the backend the portal operates on.
func (p *Portal) Server() *Server { return p.server }

func (p *Portal) openFor(token, kind string) (tokenPayload, error) {
	payload, err := p.sealer.open(token, kind)
	if err != nil {
		return payload, err
	}
	if payload.TenantID != p.tenantID || payload.ProductID != p.productID {
		return payload, fmt.Errorf("%w: issued for tenant %s product %s", ErrInvalidToken, payload.TenantID, payload.ProductID)
	}
	return payload, nil
}

// ActivateOffline redeems an activation request and returns the response
// token for the seat.
func (p *Portal) ActivateOffline(ctx context.Context, requestToken string) (string, error) {
	req, err := p.openFor(requestToken, kindActivationRequest)
	if err != nil {
		return "", err
	}
	snap, err := p.server.activate(ctx, activateRequest{
		code: req.Code, seatID: req.SeatID, seatName: req.SeatName,
		editionID: req.EditionID, mode: model.ModeOffline, productID: p.productID,
	})
	if err != nil {
		return "", err
	}
	logging.Infof("portal: offline activation %s issued for seat %s", snap.ActivationID, req.SeatID)
	return p.sealer.seal(tokenPayload{
		Kind:         kindActivationResponse,
		TenantID:     p.tenantID,
		ProductID:    p.productID,
		SeatID:       req.SeatID,
		ActivationID: snap.ActivationID,
		LeaseExpiry:  snap.Info.LeaseExpiry,
		Activation:   &snap.Info,
		Entitlement:  &snap.Entitlement,
		IssuedAt:     p.now().UTC(),
	})
}

// RefreshToken extends the lease of an offline activation and returns the
// token the seat applies.
func (p *Portal) RefreshToken(ctx context.Context, activationID string) (string, error) {
	current, err := p.server.Get(ctx, activationID, p.productID)
	if err != nil {
		return "", err
	}
	if current.Info.Mode != model.ModeOffline {
		return "", engine.NewAPIError(400, "NotOffline", "activation %s is not an offline activation", activationID)
	}
	refreshed, snap, err := p.server.refresh(ctx, activationID, p.productID)
	if err != nil {
		return "", err
	}
	if !refreshed {
		return "", engine.NewAPIError(409, "LeaseNotRefreshable", "the lease of activation %s cannot be refreshed", activationID)
	}
	return p.sealer.seal(tokenPayload{
		Kind:         kindLeaseRefresh,
		TenantID:     p.tenantID,
		ProductID:    p.productID,
		SeatID:       derefString(snap.Info.SeatID),
		ActivationID: activationID,
		LeaseExpiry:  snap.Info.LeaseExpiry,
		IssuedAt:     p.now().UTC(),
	})
}

// RedeemDeactivation releases the seat named by a deactivation token.
func (p *Portal) RedeemDeactivation(ctx context.Context, token string) (string, error) {
	payload, err := p.openFor(token, kindDeactivation)
	if err != nil {
		return "", err
	}
	if err := p.server.deactivate(ctx, payload.ActivationID); err != nil {
		return "", err
	}
	logging.Infof("portal: offline activation %s released", payload.ActivationID)
	return payload.ActivationID, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
