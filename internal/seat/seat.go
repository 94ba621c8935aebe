// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package seat decides which seat ID the activation engine runs with.
package seat

import (
	"errors"
	"fmt"
	"plugin"
	"strings"

	"github.com/google/uuid"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/logging"
)

// FingerprintSymbol is the function a native module must export.
const FingerprintSymbol = "GenerateDeviceFingerprint"

// DefaultFingerprintOption selects the module's default fingerprint algorithm.
const DefaultFingerprintOption = 0

// ErrModuleSymbol is returned when the module does not export a usable
// fingerprint function.
var ErrModuleSymbol = errors.New("fingerprint function not found in module")

// Source tells where a seat ID came from.
type Source string

const (
	SourceFingerprint Source = "fingerprint"
	SourceManual      Source = "manual"
	SourceGenerated   Source = "generated"
)

// Fingerprinter derives a device fingerprint.
type Fingerprinter func(option int) (string, error)

// Loader opens a native module and returns its fingerprint function.
type Loader func(path string) (Fingerprinter, error)

// Prompter is the subset of operator input the resolver needs.
type Prompter interface {
	Line(prompt string) (string, error)
	Confirm(message string) (bool, error)
}

// Result is a resolved seat ID.
type Result struct {
	ID     string
	Source Source
}

// Resolver picks the seat ID at startup.
type Resolver struct {
	UseModule  bool
	ModulePath string
	Prompt     Prompter
	// Load defaults to LoadModule.
	Load Loader
	// Generate defaults to a random UUID.
	Generate func() string
}

// Resolve returns the seat ID. With the native module enabled the operator
// chooses between the device fingerprint and a manually entered ID; an empty
// manual entry falls back to a generated one. Module errors are fatal.
func (r *Resolver) Resolve() (Result, error) {
	generate := r.Generate
	if generate == nil {
		generate = uuid.NewString
	}
	if !r.UseModule {
		return Result{ID: generate(), Source: SourceGenerated}, nil
	}
	if strings.TrimSpace(r.ModulePath) == "" {
		return Result{}, errors.New(i18n.T("seat.module_path_missing"))
	}

	useFingerprint, err := r.Prompt.Confirm(i18n.T("seat.use_fingerprint"))
	if err != nil {
		return Result{}, err
	}
	if useFingerprint {
		load := r.Load
		if load == nil {
			load = LoadModule
		}
		fp, err := load(r.ModulePath)
		if err != nil {
			return Result{}, err
		}
		id, err := fp(DefaultFingerprintOption)
		if err != nil {
			return Result{}, fmt.Errorf("generate device fingerprint: %w", err)
		}
		if id = strings.TrimSpace(id); id == "" {
			return Result{}, errors.New("generate device fingerprint: module returned an empty fingerprint")
		}
		return Result{ID: id, Source: SourceFingerprint}, nil
	}

	manual, err := r.Prompt.Line(i18n.T("seat.manual_prompt"))
	if err != nil {
		return Result{}, err
	}
	if manual = strings.TrimSpace(manual); manual != "" {
		return Result{ID: manual, Source: SourceManual}, nil
	}
	return Result{ID: generate(), Source: SourceGenerated}, nil
}

// Message describes the result for the operator.
func (r Result) Message() string {
	switch r.Source {
	case SourceFingerprint:
		return i18n.T("seat.using_fingerprint", r.ID)
	case SourceManual:
		return i18n.T("seat.using_manual", r.ID)
	default:
		return i18n.T("seat.using_generated", r.ID)
	}
}

// LoadModule opens a Go plugin and looks up its fingerprint function.
func LoadModule(path string) (Fingerprinter, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load native module %s: %w", path, err)
	}
	sym, err := p.Lookup(FingerprintSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModuleSymbol, FingerprintSymbol)
	}
	logging.Debugf("seat: loaded %s from %s", FingerprintSymbol, path)
	switch fn := sym.(type) {
	case func(int) (string, error):
		return fn, nil
	case *func(int) (string, error):
		return *fn, nil
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrModuleSymbol, FingerprintSymbol, sym)
	}
}
