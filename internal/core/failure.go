// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"errors"

	"github.com/toeirei/activation-console/internal/engine"
	"github.com/toeirei/activation-console/internal/i18n"
)

// ErrorKind tags a Failure with where it came from.
type ErrorKind int

const (
	// KindValidation is a local input problem; the engine was never called.
	KindValidation ErrorKind = iota + 1
	// KindAPI is a rejection reported by the licensing API.
	KindAPI
	// KindSDK is a violated engine precondition.
	KindSDK
	// KindUnexpected is anything the engine did not categorize.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAPI:
		return "api"
	case KindSDK:
		return "sdk"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Failure is a reported, non-fatal operation outcome.
type Failure struct {
	Kind    ErrorKind
	Context string
	Message string
	cause   error
}

// Error renders the failure the way the console shows it.
func (f *Failure) Error() string {
	switch f.Kind {
	case KindValidation:
		return f.Message
	case KindUnexpected:
		return i18n.T("error.unexpected_in", f.Context, f.Message)
	default:
		if f.Context == "" {
			return f.Message
		}
		return f.Context + ": " + f.Message
	}
}

// Unwrap exposes the engine error, if any.
func (f *Failure) Unwrap() error { return f.cause }

// Validation builds a local validation failure.
func Validation(msg string) *Failure {
	return &Failure{Kind: KindValidation, Message: msg}
}

// Classify turns err into a Failure attributed to context. Failures pass
// through unchanged except for a missing context.
func Classify(context string, err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		if f.Context == "" {
			cp := *f
			cp.Context = context
			return &cp
		}
		return f
	}

	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		return &Failure{Kind: KindAPI, Context: context, Message: apiErr.Error(), cause: err}
	}
	var sdkErr *engine.SDKError
	if errors.As(err, &sdkErr) {
		return &Failure{Kind: KindSDK, Context: context, Message: sdkErr.Error(), cause: err}
	}
	return &Failure{Kind: KindUnexpected, Context: context, Message: err.Error(), cause: err}
}
