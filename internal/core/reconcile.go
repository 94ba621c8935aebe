// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"

	"github.com/toeirei/activation-console/internal/i18n"
)

// Every display below comes from a fresh engine read. Nothing here caches.

func runPullRemote(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("state.pulling_remote"))
	if _, err := env.Engine.PullRemoteState(ctx); err != nil {
		return err
	}
	env.Out.Activation(env.Engine.State(), env.Engine.ActivationInfo())
	return nil
}

func runPullPersisted(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("state.pulling_persisted"))
	data, err := env.Engine.PullPersistedState(ctx)
	if err != nil {
		return err
	}
	// An empty snapshot is a normal outcome, not a failure.
	if data.IsEmpty() {
		env.Out.Error(i18n.T("state.no_persisted"))
		return nil
	}
	env.Out.Persisted(data)
	return nil
}

func runShowActivationInfo(ctx context.Context, env *Env) error {
	data, err := env.Engine.PullPersistedState(ctx)
	if err != nil {
		return err
	}
	env.Out.Persisted(data)
	return nil
}

func runGetEntitlement(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("entitlement.retrieving"))
	e, err := env.Engine.GetActivationEntitlement(ctx)
	if err != nil {
		return err
	}
	if e.IsEmpty() {
		env.Out.Error(i18n.T("entitlement.none"))
		return nil
	}
	env.Out.Entitlement(e)
	return nil
}
