package ledgersdk

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the local development fallback.
const DefaultBaseURL = "http://localhost:3000"

// ResolveBaseURL picks the public URL the app should use for links and API
// calls. Priority: an explicit override, then the current origin, then the
// deployment URL, then the localhost fallback. Trailing slashes are
// stripped so paths can always be appended with a leading slash.
func ResolveBaseURL(override, origin, siteURL string) string {
	for _, candidate := range []string{override, origin, siteURL} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return strings.TrimRight(candidate, "/")
		}
	}
	return DefaultBaseURL
}

// ConfirmationURL builds the address the emailed link lands on; it is what
// sign-up sends as the redirect target. redirectTo optionally sends the
// user somewhere specific after confirmation.
func ConfirmationURL(baseURL, redirectTo string) string {
	out := strings.TrimRight(baseURL, "/") + "/auth/confirm"
	if redirectTo != "" {
		out += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return out
}
