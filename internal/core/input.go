// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/toeirei/activation-console/internal/i18n"
)

// ErrInterrupted is returned when the operator presses Ctrl-C during raw token entry.
var ErrInterrupted = errors.New("input interrupted")

// Prompter reads operator input.
type Prompter interface {
	// Line prints prompt and reads one line without its terminator.
	Line(prompt string) (string, error)
	// Token reads a single-line opaque token. Implementations may capture it
	// in raw terminal mode; the result is the same either way.
	Token(prompt string) (string, error)
	// Confirm asks a yes/no question until it gets an answer.
	Confirm(message string) (bool, error)
}

// RawInput switches the terminal between line-buffered and raw input.
type RawInput interface {
	// Begin enters raw mode. It reports false when raw mode is unavailable,
	// in which case input stays line-buffered and End is a no-op.
	Begin() (bool, error)
	// End restores the mode that was active before Begin.
	End() error
}

// WithRawInput runs fn inside a raw input scope. The previous terminal mode
// is restored on every return path.
func WithRawInput(r RawInput, fn func(raw bool) error) (err error) {
	if r == nil {
		return fn(false)
	}
	raw, err := r.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if endErr := r.End(); err == nil {
			err = endErr
		}
	}()
	return fn(raw)
}

// LinePrompter is a Prompter over a reader and writer.
type LinePrompter struct {
	r   *bufio.Reader
	w   io.Writer
	raw RawInput
}

// NewLinePrompter returns a Prompter reading from r and echoing prompts to w.
// raw may be nil when tokens should always be read line-buffered.
func NewLinePrompter(r io.Reader, w io.Writer, raw RawInput) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w, raw: raw}
}

// Line implements Prompter.
func (p *LinePrompter) Line(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.w, prompt)
	}
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Token implements Prompter.
func (p *LinePrompter) Token(prompt string) (string, error) {
	var token string
	err := WithRawInput(p.raw, func(raw bool) error {
		if !raw {
			line, err := p.Line(prompt)
			token = line
			return err
		}
		fmt.Fprint(p.w, prompt)
		line, err := p.readRawLine()
		token = line
		return err
	})
	return strings.TrimSpace(token), err
}

// readRawLine reads bytes until Enter, echoing them since the terminal no
// longer does.
func (p *LinePrompter) readRawLine() (string, error) {
	var buf []byte
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return string(buf), nil
			}
			return "", err
		}
		switch b {
		case '\r', '\n':
			fmt.Fprint(p.w, "\r\n")
			return string(buf), nil
		case 0x03: // Ctrl-C
			fmt.Fprint(p.w, "\r\n")
			return "", ErrInterrupted
		case 0x7f, 0x08: // backspace
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				fmt.Fprint(p.w, "\b \b")
			}
		default:
			buf = append(buf, b)
			_, _ = p.w.Write([]byte{b})
		}
	}
}

// Confirm implements Prompter.
func (p *LinePrompter) Confirm(message string) (bool, error) {
	yes, no := i18n.T("prompt.yes"), i18n.T("prompt.no")
	for {
		answer, err := p.Line(fmt.Sprintf("%s [%s/%s]: ", message, yes, no))
		if err != nil {
			return false, err
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		switch answer {
		case "":
			continue
		case "y", "yes", strings.ToLower(yes):
			return true, nil
		case "n", "no", strings.ToLower(no):
			return false, nil
		}
		fmt.Fprintln(p.w, i18n.T("prompt.yes_or_no", yes, no))
	}
}

// IsQuit reports whether input asks to leave the session.
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "0", "q", "quit":
		return true
	}
	return false
}

// ParseSelection converts a 1-based menu choice into an index into a list of n entries.
func ParseSelection(input string, n int) (int, bool) {
	s := strings.TrimSpace(input)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, false
	}
	choice, err := strconv.ParseUint(s, 10, 64)
	if err != nil || choice == 0 || choice > uint64(n) {
		return 0, false
	}
	return int(choice - 1), true
}

// ParseAmount parses a positive unit count. Anything else is a validation failure.
func ParseAmount(input string) (int64, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || amount <= 0 {
		return 0, Validation(i18n.T("feature.invalid_amount"))
	}
	return amount, nil
}

// isCancel reports whether the operator aborted a selection. "None" is
// accepted as well as "cancel".
func isCancel(input string) bool {
	s := strings.TrimSpace(input)
	return strings.EqualFold(s, "cancel") || strings.EqualFold(s, "none")
}
