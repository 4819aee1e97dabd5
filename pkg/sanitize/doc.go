// Package sanitize cleans user-supplied text before it reaches a workflow:
// display names are trimmed and HTML-escaped, endpoint URLs are checked, and
// raw input is bounded in size and stripped of terminal control characters.
package sanitize
