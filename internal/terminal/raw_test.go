// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package terminal

import (
	"os"
	"testing"
)

func TestRawDisabledOnNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	defer f.Close()

	for _, p := range []Policy{PolicyAlways, PolicyAuto, PolicyNever} {
		r := newRaw(int(f.Fd()), p, "darwin")
		if r.Enabled() {
			t.Fatalf("%s: raw mode must stay off for a regular file", p)
		}
		raw, err := r.Begin()
		if err != nil || raw {
			t.Fatalf("%s: Begin = %t, %v", p, raw, err)
		}
		if err := r.End(); err != nil {
			t.Fatalf("%s: End = %v", p, err)
		}
	}
}

func TestEndWithoutBeginIsNoop(t *testing.T) {
	r := &Raw{fd: -1}
	if err := r.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}
