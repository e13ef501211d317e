package galaxy

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names redacted before a URL is
// logged. Galaxy accepts the API key as ?key= on display endpoints.
var sensitiveParams = []string{
	"key",
	"api_key",
	"token",
	"password",
}

// SanitizeURL renders u with sensitive query parameters redacted
func SanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
		}
	}

	safe := *u
	safe.RawQuery = q.Encode()
	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if lower == sensitive {
			return true
		}
	}
	return false
}
