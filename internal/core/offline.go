// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"strings"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/i18n"
)

func runActivateWithCode(ctx context.Context, env *Env) error {
	code, err := env.Prompt.Line(i18n.T("activate.code_prompt"))
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Validation(i18n.T("activate.code_required"))
	}
	seatName, err := env.Prompt.Line(i18n.T("activate.seat_name_prompt"))
	if err != nil {
		return err
	}
	editionID, err := env.Prompt.Line(i18n.T("activate.edition_prompt"))
	if err != nil {
		return err
	}

	if _, err := env.Engine.Activate(ctx, engine.Credentials{ActivationCode: code},
		strings.TrimSpace(seatName), strings.TrimSpace(editionID)); err != nil {
		return err
	}

	env.Out.Activation(env.Engine.State(), env.Engine.ActivationInfo())
	env.Out.Success(i18n.T("activate.done"))
	return nil
}

func runGenerateOfflineRequest(ctx context.Context, env *Env) error {
	env.Out.Warning(i18n.T("offline.lease_period_advisory"))

	code, err := env.Prompt.Line(i18n.T("activate.code_prompt"))
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Validation(i18n.T("activate.code_required"))
	}
	seatName, err := env.Prompt.Line(i18n.T("activate.seat_name_prompt"))
	if err != nil {
		return err
	}

	env.Out.Info(i18n.T("offline.generating"))
	token, err := env.Engine.GenerateOfflineActivationRequestToken(ctx, code, strings.TrimSpace(seatName), engine.OfflineRequestOptions{})
	if err != nil {
		return err
	}
	env.Out.Token(i18n.T("offline.request_token_label"), token)
	return nil
}

func runActivateOffline(ctx context.Context, env *Env) error {
	token, err := env.Prompt.Token(i18n.T("offline.response_prompt"))
	if err != nil {
		return err
	}
	if token == "" {
		return Validation(i18n.T("offline.response_required"))
	}

	env.Out.Info(i18n.T("offline.activating"))
	if _, err := env.Engine.ActivateOffline(ctx, token); err != nil {
		return err
	}

	data, err := env.Engine.PullPersistedState(ctx)
	if err != nil {
		return err
	}
	env.Out.Persisted(data)
	env.Out.Success(i18n.T("offline.activated"))
	return nil
}

func runDeactivate(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("deactivate.progress"))
	ok, err := env.Engine.Deactivate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		env.Out.Error(i18n.T("deactivate.failed"))
		return nil
	}
	env.Out.Success(i18n.T("deactivate.done"))
	return nil
}

func runDeactivateOffline(ctx context.Context, env *Env) error {
	env.Out.Info(i18n.T("deactivate.offline_progress"))
	token, err := env.Engine.DeactivateOffline(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		env.Out.Error(i18n.T("deactivate.offline_failed"))
		return nil
	}
	env.Out.Token(i18n.T("deactivate.token_label"), token)
	return nil
}
