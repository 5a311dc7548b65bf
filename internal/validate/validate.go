package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'\-.]{1,50}$`)
	reVinID = regexp.MustCompile(`^[\p{L}\p{N}_.\-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// Quantity parses a counted quantity; negatives and garbage are rejected.
func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 1_000_000 {
		return 0, false
	}
	return n, true
}

// ID parses a positive numeric row id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

func VinID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reVinID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > 60 {
		return "", false
	}
	return s, true
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
