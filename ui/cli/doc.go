// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface of the activation console
// using Cobra. It loads configuration, opens storage, resolves the seat ID and
// hands control to the interactive session in internal/core. CLI code stays
// thin and delegates lifecycle logic to core and the engine.
package cli
