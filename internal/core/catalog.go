// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import "github.com/toeirei/activation-console/internal/model"

// ActionID identifies an operation independently of its display name.
type ActionID int

const (
	ActionShowActivationInfo ActionID = iota + 1
	ActionPullRemoteState
	ActionPullPersistedState
	ActionCheckoutFeature
	ActionReturnFeature
	ActionTrackUsage
	ActionRefreshLease
	ActionRefreshLeaseOffline
	ActionDeactivate
	ActionDeactivateOffline
	ActionGetEntitlement
	ActionActivateWithCode
	ActionGenerateOfflineRequest
	ActionActivateOffline
)

// Canonical action names. The mode filter matches on these.
const (
	NameShowActivationInfo     = "Show activation info"
	NamePullRemoteState        = "Pull activation state from the server"
	NamePullPersistedState     = "Pull activation state from the local storage"
	NameCheckoutFeature        = "Checkout advanced feature"
	NameReturnFeature          = "Return element-pool feature"
	NameTrackUsage             = "Track usage of a bool feature"
	NameRefreshLease           = "Refresh activation lease"
	NameRefreshLeaseOffline    = "Refresh offline activation lease (with refresh token from End User Portal)"
	NameDeactivate             = "Deactivate license"
	NameDeactivateOffline      = "Deactivate offline license"
	NameGetEntitlement         = "Get entitlement associated with the activation"
	NameActivateWithCode       = "Activate license with code"
	NameGenerateOfflineRequest = "Generate offline activation request (for End User Portal)"
	NameActivateOffline        = "Activate offline (with activation response from End User Portal)"
)

// Action is one menu entry: a display name and the operation it dispatches to.
type Action struct {
	ID   ActionID
	Name string
}

var (
	showInfo          = Action{ActionShowActivationInfo, NameShowActivationInfo}
	pullRemote        = Action{ActionPullRemoteState, NamePullRemoteState}
	pullPersisted     = Action{ActionPullPersistedState, NamePullPersistedState}
	checkout          = Action{ActionCheckoutFeature, NameCheckoutFeature}
	returnFeature     = Action{ActionReturnFeature, NameReturnFeature}
	trackUsage        = Action{ActionTrackUsage, NameTrackUsage}
	refreshLease      = Action{ActionRefreshLease, NameRefreshLease}
	refreshOffline    = Action{ActionRefreshLeaseOffline, NameRefreshLeaseOffline}
	deactivate        = Action{ActionDeactivate, NameDeactivate}
	deactivateOffline = Action{ActionDeactivateOffline, NameDeactivateOffline}
	getEntitlement    = Action{ActionGetEntitlement, NameGetEntitlement}
	activateWithCode  = Action{ActionActivateWithCode, NameActivateWithCode}
	offlineRequest    = Action{ActionGenerateOfflineRequest, NameGenerateOfflineRequest}
	activateOffline   = Action{ActionActivateOffline, NameActivateOffline}
)

// Catalog maps each lifecycle state to its ordered actions. It is built once
// and never modified; lookups hand out copies.
type Catalog struct {
	entries map[model.ActivationState][]Action
}

// NewCatalog builds the action catalog.
func NewCatalog() Catalog {
	return Catalog{entries: map[model.ActivationState][]Action{
		model.StateActive: {
			showInfo, pullRemote, pullPersisted,
			checkout, returnFeature, trackUsage,
			refreshLease, refreshOffline,
			deactivate, deactivateOffline,
			getEntitlement,
		},
		model.StateLeaseExpired: {
			showInfo, pullRemote, pullPersisted,
			refreshLease, refreshOffline,
			deactivate, deactivateOffline,
			getEntitlement,
		},
		model.StateNotActivated: {
			showInfo, pullPersisted,
			activateWithCode, offlineRequest, activateOffline,
		},
		model.StateEntitlementNotActive: {
			showInfo, pullRemote, pullPersisted,
			getEntitlement,
			activateWithCode, offlineRequest, activateOffline,
		},
	}}
}

// ActionsFor returns the actions for state. ok is false for states the
// catalog does not define.
func (c Catalog) ActionsFor(state model.ActivationState) (actions []Action, ok bool) {
	entry, ok := c.entries[state]
	if !ok {
		return nil, false
	}
	return append([]Action(nil), entry...), true
}

// Actions that cannot run in a given mode, matched by name.
var modeExclusions = map[model.ActivationMode]map[string]struct{}{
	model.ModeOffline: {
		NameCheckoutFeature: {},
		NameReturnFeature:   {},
		NameTrackUsage:      {},
		NameDeactivate:      {},
		NameRefreshLease:    {},
		NamePullRemoteState: {},
	},
	model.ModeOnline: {
		NameDeactivateOffline:   {},
		NameRefreshLeaseOffline: {},
	},
}

// FilterForMode drops the actions that do not apply to mode, keeping order.
// An unset mode is treated as online.
func FilterForMode(actions []Action, mode model.ActivationMode) []Action {
	if mode != model.ModeOffline {
		mode = model.ModeOnline
	}
	excluded := modeExclusions[mode]
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if _, skip := excluded[a.Name]; skip {
			continue
		}
		out = append(out, a)
	}
	return out
}
