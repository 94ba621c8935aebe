// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/model"
)

// Presenter renders results. Implementations decide on colors and layout.
type Presenter interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)

	Status(state model.ActivationState, mode model.ActivationMode)
	Menu(actions []Action)
	Features(features []model.ActivationFeature, highlight string)
	Activation(state model.ActivationState, info model.ActivationInfo)
	Persisted(data model.PersistentData)
	Entitlement(e model.Entitlement)
	// Token shows an opaque token the operator has to carry to the portal.
	Token(label, token string)
}

// Env is what an operation works with.
type Env struct {
	Engine engine.Engine
	Prompt Prompter
	Out    Presenter
}

// Operation is one dispatchable action.
type Operation interface {
	// Context names the operation in failure messages.
	Context() string
	Run(ctx context.Context, env *Env) error
}

// operation is an Operation backed by a function.
type operation struct {
	contextID string
	run       func(ctx context.Context, env *Env) error
}

func (o operation) Context() string { return i18n.T(o.contextID) }

func (o operation) Run(ctx context.Context, env *Env) error { return o.run(ctx, env) }
