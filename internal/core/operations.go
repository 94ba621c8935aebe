// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

// Operations maps every catalog action to the operation it runs.
type Operations map[ActionID]Operation

// DefaultOperations returns the operation for every ActionID.
func DefaultOperations() Operations {
	return Operations{
		ActionShowActivationInfo:     operation{"context.show_info", runShowActivationInfo},
		ActionPullRemoteState:        operation{"context.pull_remote", runPullRemote},
		ActionPullPersistedState:     operation{"context.pull_persisted", runPullPersisted},
		ActionCheckoutFeature:        checkoutWorkflow,
		ActionReturnFeature:          returnWorkflow,
		ActionTrackUsage:             usageWorkflow,
		ActionRefreshLease:           operation{"context.refresh_lease", runRefreshLease},
		ActionRefreshLeaseOffline:    operation{"context.refresh_lease_offline", runRefreshLeaseOffline},
		ActionDeactivate:             operation{"context.deactivate", runDeactivate},
		ActionDeactivateOffline:      operation{"context.deactivate_offline", runDeactivateOffline},
		ActionGetEntitlement:         operation{"context.entitlement", runGetEntitlement},
		ActionActivateWithCode:       operation{"context.activate", runActivateWithCode},
		ActionGenerateOfflineRequest: operation{"context.offline_request", runGenerateOfflineRequest},
		ActionActivateOffline:        operation{"context.activate_offline", runActivateOffline},
	}
}
