// Package prompt asks the user for a line of text.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Modes accepted by New.
const (
	ModeAuto = "auto"
	ModeLine = "line"
	ModeTUI  = "tui"
)

// Prompter blocks until the user answers or dismisses a prompt.
// ok is false when the prompt was dismissed.
type Prompter interface {
	Prompt(ctx context.Context, label string) (text string, ok bool, err error)
}

// New selects a prompter for mode. In auto mode the interactive prompter
// is used only when in is a terminal.
func New(mode string, in io.Reader, out io.Writer) (Prompter, error) {
	switch mode {
	case ModeLine:
		return NewLinePrompter(in, out), nil
	case ModeTUI:
		return NewTUIPrompter(in, out), nil
	case ModeAuto, "":
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return NewTUIPrompter(in, out), nil
		}
		return NewLinePrompter(in, out), nil
	}
	return nil, fmt.Errorf("unknown prompt mode '%s' (must be one of: auto, line, tui)", mode)
}
