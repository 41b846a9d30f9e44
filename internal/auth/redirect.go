package auth

import (
	"net/url"
	"strings"
)

// Redirect carries the parameters extracted from a provider redirect URL,
// e.g. /auth/google/callback?code=abc123.
type Redirect struct {
	Provider string // path segment preceding "callback"; empty when absent
	Code     string // authorization code; empty when no callback is in progress
	Err      string // provider error, combined with error_description when sent
}

// ParseRedirect extracts the callback parameters from a location.
func ParseRedirect(u *url.URL) Redirect {
	var r Redirect

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 2 && segments[len(segments)-1] == "callback" {
		r.Provider = segments[len(segments)-2]
	}

	query := u.Query()
	r.Code = query.Get("code")

	if errParam := query.Get("error"); errParam != "" {
		r.Err = errParam
		if desc := query.Get("error_description"); desc != "" {
			r.Err += ": " + desc
		}
	}

	return r
}

// Strip returns the location with the code, error, and state parameters
// removed, leaving any unrelated query parameters in place. The handler
// rewrites the visible address with this value before the exchange begins
// so a reload cannot resubmit the code.
func Strip(u *url.URL) string {
	query := u.Query()
	query.Del("code")
	query.Del("error")
	query.Del("error_description")
	query.Del("state")

	stripped := *u
	stripped.RawQuery = query.Encode()
	return stripped.String()
}
