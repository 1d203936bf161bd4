package credentials

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// TerminalSource prompts for secrets on the controlling terminal with echo
// disabled.
type TerminalSource struct {
	// read is swapped in tests; defaults to term.ReadPassword on stdin.
	read func() ([]byte, error)
}

// NewTerminalSource creates a TerminalSource reading from stdin.
func NewTerminalSource() *TerminalSource {
	return &TerminalSource{
		read: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

// Secret prompts the operator and reads the value without echo.
func (t *TerminalSource) Secret(name, prompt string) (Secret, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	raw, err := t.read()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return Secret{}, fmt.Errorf("read %s: %w", name, err)
	}
	return NewSecret(string(raw)), nil
}
