// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"io"

	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/logging"
)

// Session is the interactive menu loop. It holds no activation state of its
// own; every iteration reads state and mode from the engine.
type Session struct {
	Env
	Catalog    Catalog
	Operations Operations
}

// NewSession wires a session with the default catalog and operations.
func NewSession(env Env) *Session {
	return &Session{Env: env, Catalog: NewCatalog(), Operations: DefaultOperations()}
}

// Initialize initializes the engine. A failure is reported, not returned.
func (s *Session) Initialize(ctx context.Context) {
	if err := s.Engine.Initialize(ctx); err != nil {
		s.report(Classify(i18n.T("context.initialize"), err))
		return
	}
	s.Out.Success(i18n.T("session.initialized"))
}

// Run loops until the operator quits, input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Step(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit {
			return nil
		}
	}
}

// Step runs one menu iteration. It returns an error only when input fails;
// operation failures are rendered and swallowed.
func (s *Session) Step(ctx context.Context) (quit bool, err error) {
	state := s.Engine.State()
	mode := s.Engine.ActivationInfo().Mode
	s.Out.Status(state, mode)

	var actions []Action
	if all, ok := s.Catalog.ActionsFor(state); ok {
		actions = FilterForMode(all, mode)
	} else {
		s.Out.Error(i18n.T("session.no_actions"))
	}
	s.Out.Menu(actions)

	input, err := s.Prompt.Line(i18n.T("session.choice_prompt"))
	if err != nil {
		return false, err
	}
	if IsQuit(input) {
		return true, nil
	}

	idx, ok := ParseSelection(input, len(actions))
	if !ok {
		s.Out.Error(i18n.T("session.invalid_selection"))
		return false, nil
	}
	return false, s.dispatch(ctx, actions[idx])
}

func (s *Session) dispatch(ctx context.Context, action Action) error {
	op, ok := s.Operations[action.ID]
	if !ok {
		s.Out.Error(i18n.T("session.unsupported_action", action.Name))
		return nil
	}

	s.Out.Info(i18n.T("session.executing", action.Name))
	logging.Debugf("dispatching action %d (%s)", action.ID, action.Name)

	err := op.Run(ctx, &s.Env)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return err
	case errors.Is(err, ErrInterrupted):
		s.Out.Warning(i18n.T("session.input_cancelled"))
		return nil
	}
	f := Classify(op.Context(), err)
	logging.Debugf("action %s failed: kind=%s err=%v", action.Name, f.Kind, err)
	s.report(f)
	return nil
}

func (s *Session) report(f *Failure) {
	s.Out.Error(f.Error())
}
