// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package terminal switches the controlling terminal into raw input mode for
// reading long tokens that line-buffered input would truncate.
package terminal

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/term"
)

// Policy decides when raw input is used.
type Policy string

const (
	// PolicyAuto uses raw input only where the line discipline limits input
	// length (macOS).
	PolicyAuto   Policy = "auto"
	PolicyAlways Policy = "always"
	PolicyNever  Policy = "never"
)

// Raw implements the console's raw-input capability over a file descriptor.
type Raw struct {
	fd      int
	enabled bool

	mu    sync.Mutex
	saved *term.State
}

// New returns a Raw for stdin honouring policy. Raw mode is never used when
// stdin is not a terminal.
func New(policy Policy) *Raw {
	return newRaw(int(os.Stdin.Fd()), policy, runtime.GOOS)
}

func newRaw(fd int, policy Policy, goos string) *Raw {
	enabled := false
	switch policy {
	case PolicyAlways:
		enabled = true
	case PolicyNever:
		enabled = false
	default:
		enabled = goos == "darwin"
	}
	return &Raw{fd: fd, enabled: enabled && term.IsTerminal(fd)}
}

// Enabled reports whether Begin will switch modes.
func (r *Raw) Enabled() bool { return r.enabled }

// Begin enters raw mode and remembers the previous state.
func (r *Raw) Begin() (bool, error) {
	if !r.enabled {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved != nil {
		return true, nil
	}
	st, err := term.MakeRaw(r.fd)
	if err != nil {
		return false, fmt.Errorf("enter raw input mode: %w", err)
	}
	r.saved = st
	return true, nil
}

// End restores the state saved by Begin.
func (r *Raw) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return nil
	}
	st := r.saved
	r.saved = nil
	if err := term.Restore(r.fd, st); err != nil {
		return fmt.Errorf("restore terminal mode: %w", err)
	}
	return nil
}
