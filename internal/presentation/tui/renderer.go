package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Write renders markdown with glamour when w is a terminal and writes it raw
// otherwise, so piped output stays greppable.
func Write(w io.Writer, markdown string) error {
	if IsTerminal(w) {
		if out, err := NewRenderer()(markdown); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err := fmt.Fprint(w, markdown)
	return err
}
