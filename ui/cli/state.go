// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/activation-console/internal/engine/sandbox"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/storage"
)

// newStateCmd prints the persisted activation without starting a session.
func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the persisted activation data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			out := newConsole(cmd)
			data, err := storage.NewActivationStorage(st).Load(cmd.Context())
			if err != nil {
				return err
			}
			if data.IsEmpty() {
				out.Info(i18n.T("state.no_persisted"))
				return nil
			}
			out.Persisted(data)
			return nil
		},
	}
}

// newResetCmd clears the persisted activation, and with --server the
// sandbox backend as well.
func newResetCmd() *cobra.Command {
	var server bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete persisted activation data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			out := newConsole(cmd)
			if err := storage.NewActivationStorage(st).Clear(ctx); err != nil {
				return fmt.Errorf("delete persisted activation: %w", err)
			}
			out.Success(i18n.T("cli.persisted_deleted"))
			if server {
				if err := st.Delete(ctx, sandbox.ServerKey); err != nil {
					return fmt.Errorf("delete sandbox server state: %w", err)
				}
				out.Success(i18n.T("cli.server_state_deleted"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&server, "server", false, "Also delete the sandbox server state (all seats)")
	return cmd
}
