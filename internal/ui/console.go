// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ui renders activation results on a terminal.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/activation-console/internal/core"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/logging"
	"github.com/toeirei/activation-console/internal/model"
)

type styles struct {
	success   lipgloss.Style
	warning   lipgloss.Style
	error     lipgloss.Style
	title     lipgloss.Style
	highlight lipgloss.Style
	state     map[model.ActivationState]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	green := r.NewStyle().Foreground(lipgloss.Color("2"))
	yellow := r.NewStyle().Foreground(lipgloss.Color("3"))
	red := r.NewStyle().Foreground(lipgloss.Color("1"))
	return styles{
		success:   green,
		warning:   yellow,
		error:     red,
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		highlight: r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		state: map[model.ActivationState]lipgloss.Style{
			model.StateActive:               green,
			model.StateLeaseExpired:         yellow,
			model.StateEntitlementNotActive: red,
			model.StateNotActivated:         red,
		},
	}
}

// Console is a core.Presenter writing to a terminal. Errors go to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
	st     styles

	copyTokens bool
	copy       func(string) error
	now        func() time.Time
}

var _ core.Presenter = (*Console)(nil)

// Option customizes a Console.
type Option func(*Console)

// WithClipboard copies shown tokens to the system clipboard when enabled.
func WithClipboard(enabled bool) Option {
	return func(c *Console) { c.copyTokens = enabled }
}

// WithClock overrides the clock used for relative times.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// withCopier replaces the clipboard writer, for tests.
func withCopier(fn func(string) error) Option {
	return func(c *Console) { c.copy = fn }
}

// NewConsole returns a presenter. Colors are used only when out is a terminal.
func NewConsole(out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{
		out:    out,
		errOut: errOut,
		st:     newStyles(lipgloss.NewRenderer(out)),
		copy:   clipboard.WriteAll,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Console) println(a ...any) { fmt.Fprintln(c.out, a...) }

func (c *Console) printf(format string, a ...any) { fmt.Fprintf(c.out, format, a...) }

// Info prints a plain line.
func (c *Console) Info(msg string) { c.println(msg) }

// Success prints a green "Success:" line.
func (c *Console) Success(msg string) {
	c.println(c.st.success.Render(i18n.T("console.success_prefix") + msg))
}

// Warning prints a yellow "Warning:" line.
func (c *Console) Warning(msg string) {
	c.println(c.st.warning.Render(i18n.T("console.warning_prefix") + msg))
}

// Error prints a red "Error:" line to errOut.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.errOut, c.st.error.Render(i18n.T("console.error_prefix")+msg))
}

// Status prints the state header shown before every menu.
func (c *Console) Status(state model.ActivationState, mode model.ActivationMode) {
	c.println()
	c.printf("%s %s\n", i18n.T("console.current_state"), c.stateText(state))
	c.printf("%s %s\n", i18n.T("console.activation_mode"), mode)
}

// Menu prints the numbered actions followed by the quit entry.
func (c *Console) Menu(actions []core.Action) {
	c.println(i18n.T("console.available_actions"))
	for i, a := range actions {
		c.printf("%d. %s\n", i+1, a.Name)
	}
	c.println(i18n.T("console.quit_entry"))
}

// Token prints a token on its own line and copies it when configured.
func (c *Console) Token(label, token string) {
	c.println(label)
	c.println(c.st.success.Render(token))
	if !c.copyTokens {
		return
	}
	if clipboard.Unsupported {
		logging.Debugf("clipboard not available on this system")
		return
	}
	if err := c.copy(token); err != nil {
		logging.Warnf("could not copy token to clipboard: %v", err)
		return
	}
	c.println(i18n.T("console.token_copied"))
}

func (c *Console) stateText(state model.ActivationState) string {
	if s, ok := c.st.state[state]; ok {
		return s.Render(state.String())
	}
	return state.String()
}
