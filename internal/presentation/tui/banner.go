package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the blockflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{" _     _            _     __ _", "#38bdf8"},
		{"| |__ | | ___   ___| | __/ _| | _____      __", "#22d3ee"},
		{"| '_ \\| |/ _ \\ / __| |/ / |_| |/ _ \\ \\ /\\ / /", "#2dd4bf"},
		{"| |_) | | (_) | (__|   <|  _| | (_) \\ V  V /", "#34d399"},
		{"|_.__/|_|\\___/ \\___|_|\\_\\_| |_|\\___/ \\_/\\_/", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}

// Status writes a one-line coloured verdict ("✔ msg" or "✘ msg").
func Status(w io.Writer, ok bool, msg string) {
	out := termenv.NewOutput(w)
	mark, color := "✔", "#22c55e"
	if !ok {
		mark, color = "✘", "#ef4444"
	}
	fmt.Fprintln(w, out.String(mark+" "+msg).Foreground(out.Color(color)).Bold())
}
