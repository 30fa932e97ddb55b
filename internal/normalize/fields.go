// Package normalize cleans and validates individual lead fields into their
// canonical forms. Malformed input is never an error; it is reported as absent.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	emailPrefix  = regexp.MustCompile(`^(mailto:|email:)`)
	phoneStrip   = regexp.MustCompile(`[^\d+]`)
	nonDigit     = regexp.MustCompile(`\D`)
)

var socialPatterns = map[string]*regexp.Regexp{
	"instagram": regexp.MustCompile(`^[a-zA-Z0-9_.]{1,30}$`),
	"facebook":  regexp.MustCompile(`^[a-zA-Z0-9.]{5,50}$`),
	"twitter":   regexp.MustCompile(`^[a-zA-Z0-9_]{1,15}$`),
	"linkedin":  regexp.MustCompile(`^[a-zA-Z0-9\-]{3,100}$`),
}

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// CleanEmail lower-cases and trims raw, strips a mailto: or email: prefix and
// validates the result.
func CleanEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	email = emailPrefix.ReplaceAllString(email, "")
	if !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// CleanURL trims raw, adds https:// when no http(s) scheme is present, drops
// tracking query parameters and requires a scheme and host.
func CleanURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	u.RawQuery = stripTracking(u.RawQuery)
	u.ForceQuery = false
	return u.String(), true
}

// stripTracking removes utm_*, fbclid and gclid parameters while keeping the
// order of the remaining ones.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		key := strings.ToLower(strings.SplitN(p, "=", 2)[0])
		if strings.HasPrefix(key, "utm_") || key == "fbclid" || key == "gclid" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "&")
}

// ExtractDomain returns the lower-cased host of rawURL.
func ExtractDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Host), true
}

// ValidateSocialHandle checks handle against the platform's character and
// length rule. A leading @ is ignored. Platforms without a rule accept any
// non-empty handle.
func ValidateSocialHandle(platform, handle string) bool {
	if handle == "" {
		return false
	}
	pattern, ok := socialPatterns[strings.ToLower(platform)]
	if !ok {
		return true
	}
	return pattern.MatchString(strings.TrimLeft(handle, "@"))
}

// DigitsOnly drops every non-digit character.
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// NormalizeName folds a business name for exact comparison: NFC composed,
// lower-cased and trimmed.
func NormalizeName(s string) string {
	// Casers carry state, so each call gets its own.
	return strings.TrimSpace(cases.Lower(language.Und).String(norm.NFC.String(s)))
}
