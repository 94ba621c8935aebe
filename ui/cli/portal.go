// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/activation-console/internal/core"
	"github.com/toeirei/activation-console/internal/engine/sandbox"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/terminal"
)

// portalRun opens the sandbox portal over the configured storage and runs fn.
func portalRun(cmd *cobra.Command, fn func(p *sandbox.Portal) error) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	p, err := sandbox.NewPortal(sandboxOptions(st, catalog, ""))
	if err != nil {
		return err
	}
	return fn(p)
}

// tokenArg returns the token given on the command line, or reads one.
func tokenArg(cmd *cobra.Command, args []string, promptID string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	raw := terminal.New(terminal.Policy(appConfig.Terminal.RawTokenInput))
	token, err := core.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout(), raw).Token(i18n.T(promptID))
	if err != nil {
		return "", err
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errors.New(i18n.T("portal.token_required"))
	}
	return token, nil
}

func newPortalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "End User Portal side of the offline token exchange (sandbox)",
		Long: `The portal commands play the role of the End User Portal for the
built-in sandbox backend: they turn offline activation requests into response
tokens, issue lease refresh tokens and redeem deactivation tokens. They share
storage with the interactive console, so run them against the same DSN.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "activate [request-token]",
			Short: "Redeem an offline activation request and print the response token",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := tokenArg(cmd, args, "portal.request_prompt")
				if err != nil {
					return err
				}
				return portalRun(cmd, func(p *sandbox.Portal) error {
					response, err := p.ActivateOffline(cmd.Context(), token)
					if err != nil {
						return err
					}
					newConsole(cmd).Token(i18n.T("portal.response_token_label"), response)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "refresh <activation-id>",
			Short: "Issue a lease refresh token for an offline activation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return portalRun(cmd, func(p *sandbox.Portal) error {
					token, err := p.RefreshToken(cmd.Context(), strings.TrimSpace(args[0]))
					if err != nil {
						return err
					}
					newConsole(cmd).Token(i18n.T("portal.refresh_token_label"), token)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "deactivate [deactivation-token]",
			Short: "Redeem an offline deactivation token and release the seat",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := tokenArg(cmd, args, "portal.deactivation_prompt")
				if err != nil {
					return err
				}
				return portalRun(cmd, func(p *sandbox.Portal) error {
					id, err := p.RedeemDeactivation(cmd.Context(), token)
					if err != nil {
						return err
					}
					newConsole(cmd).Success(i18n.T("portal.released", id))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seats",
			Short: "List the activations known to the sandbox backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return portalRun(cmd, func(p *sandbox.Portal) error {
					seats, err := p.Server().Seats(cmd.Context())
					if err != nil {
						return err
					}
					return printSeats(cmd, seats)
				})
			},
		},
	)
	return cmd
}

func printSeats(cmd *cobra.Command, seats []sandbox.SeatSummary) error {
	out := cmd.OutOrStdout()
	if len(seats) == 0 {
		_, err := fmt.Fprintln(out, i18n.T("portal.no_seats"))
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, i18n.T("portal.seats_header"))
	for _, s := range seats {
		expiry := "-"
		if s.LeaseExpiry != nil {
			expiry = core.FormatTime(*s.LeaseExpiry)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ActivationID, s.Code, s.SeatID, s.Mode, expiry)
	}
	return tw.Flush()
}
