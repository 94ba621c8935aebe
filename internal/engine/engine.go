// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package engine describes the activation engine the console drives. The engine
// performs signing, remote calls and secure persistence; the console only
// decides which operations are legal and renders what the engine reports.
// Every blocking call takes a context and is awaited by the caller before the
// next one is issued.
package engine

import (
	"context"

	"github.com/toeirei/activation-console/internal/model"
)

// Credentials identify the license being activated.
type Credentials struct {
	ActivationCode string
}

// OfflineRequestOptions tunes offline activation request generation.
type OfflineRequestOptions struct {
	EditionID string
}

// Engine is the activation API consumed by the console.
type Engine interface {
	Initialize(ctx context.Context) error
	Activate(ctx context.Context, creds Credentials, seatName, editionID string) (model.ActivationInfo, error)
	GenerateOfflineActivationRequestToken(ctx context.Context, code, seatName string, opts OfflineRequestOptions) (string, error)
	ActivateOffline(ctx context.Context, responseToken string) (model.ActivationInfo, error)
	PullRemoteState(ctx context.Context) (model.ActivationInfo, error)
	PullPersistedState(ctx context.Context) (model.PersistentData, error)
	RefreshLease(ctx context.Context) (bool, error)
	RefreshLeaseOffline(ctx context.Context, token string) error
	Deactivate(ctx context.Context) (bool, error)
	DeactivateOffline(ctx context.Context) (string, error)
	GetActivationEntitlement(ctx context.Context) (model.Entitlement, error)

	State() model.ActivationState
	ActivationInfo() model.ActivationInfo
	Features() FeatureSet
}

// FeatureSet exposes the features of the current activation.
type FeatureSet interface {
	Features() []model.ActivationFeature
}

// ActiveFeatureSet is handed out only for an online activation that is active.
// The engine owns the entitlement pool and enforces its bounds.
type ActiveFeatureSet interface {
	FeatureSet
	CheckoutFeature(ctx context.Context, key string, amount int64) error
	ReturnFeature(ctx context.Context, key string, amount int64) error
	TrackUsage(ctx context.Context, key string) error
}

// ReadonlyFeatures is a FeatureSet over a fixed list.
type ReadonlyFeatures []model.ActivationFeature

// Features returns the list.
func (r ReadonlyFeatures) Features() []model.ActivationFeature { return r }
