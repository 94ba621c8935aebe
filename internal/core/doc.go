// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core contains the activation console's workflows, free of any
// terminal or storage concerns.
//
// A Session owns the read-eval loop: it reconciles the engine's state, asks the
// catalog which actions fit the current mode, dispatches the chosen action and
// reports failures through a Presenter. The workflows for feature checkout,
// return and usage, lease refresh, and the offline token exchanges live in
// their own files and share the Prompter and Presenter boundaries so tests can
// drive them with scripted input.
package core
