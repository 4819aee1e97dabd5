package sanitize

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "BLOCKFLOW_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input cleans free text coming from a client by enforcing the size limit,
// validating UTF-8 and stripping control characters other than \n, \t and \r.
func Input(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		// Reject rather than truncate so stored names never differ silently from what was sent.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// String trims s and HTML-escapes it. It is applied to display names before
// they are stored.
func String(s string) string {
	return govalidator.Escape(govalidator.Trim(s, ""))
}

// Name runs Input and String in sequence.
func Name(s string) (string, error) {
	clean, err := Input(s)
	if err != nil {
		return "", err
	}
	return String(clean), nil
}

// URL trims s and returns it when it is a usable endpoint, or "" otherwise.
func URL(s string) string {
	s = govalidator.Trim(s, "")
	if IsURL(s) {
		return s
	}
	return ""
}

// IsURL reports whether s is an http, https or ftp URL (the scheme may be
// omitted) whose host is an IP address or a dotted domain name.
func IsURL(s string) bool {
	if !govalidator.IsURL(s) {
		return false
	}
	candidate := s
	if !strings.Contains(s, "://") {
		candidate = "http://" + s
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
	default:
		return false
	}
	host := u.Hostname()
	return govalidator.IsIP(host) || (strings.Contains(host, ".") && govalidator.IsDNSName(host))
}

// TitleCase upper-cases the first letter of every space-separated word and
// lower-cases the rest ("api block" -> "Api Block").
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
