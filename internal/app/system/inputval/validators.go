// internal/app/system/inputval/validators.go
package inputval

import (
	"net/mail"
	"net/url"
	"strings"
)

// allowedAuthMethods are the sign-in methods the platform supports, in
// display order.
var allowedAuthMethods = []string{"password", "google"}

// IsValidAuthMethod reports whether method names a supported sign-in
// method. Matching is case-insensitive and ignores surrounding whitespace.
func IsValidAuthMethod(method string) bool {
	m := strings.ToLower(strings.TrimSpace(method))
	for _, allowed := range allowedAuthMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// AllowedAuthMethodsList returns the supported sign-in methods.
func AllowedAuthMethodsList() []string {
	out := make([]string, len(allowedAuthMethods))
	copy(out, allowedAuthMethods)
	return out
}

// IsValidEmail reports whether s is a bare RFC 5322 address. Display-name
// forms ("Name <a@b>") are rejected; a single-label domain is allowed for
// dev and test environments.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}

// IsValidObjectID reports whether s is a 24-character hex MongoDB ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
