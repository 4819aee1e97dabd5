// Package tui renders command output for humans: markdown reports through
// glamour on terminals, plain markdown when piped, and a coloured banner.
package tui
