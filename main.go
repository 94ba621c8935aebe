// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the activation console.
//
// Usage:
//
//	go run . [flags]
//	./activation-console [flags]
//
// This launches the interactive console. See --help for options.
package main

import (
	"os"

	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("activation console: %v", err)
		os.Exit(1)
	}
}
