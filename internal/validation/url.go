package validation

import (
	"net/url"
	"strings"
)

// ValidateBaseURL checks the API base URL given to a client: it must be a
// non-empty absolute http(s) URL with a host and without query or fragment.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return valueError("base_url", "base_url must be a non-empty string")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return valueError("base_url", "invalid base_url %q: %v", rawURL, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return valueError("base_url", "invalid base_url scheme: only http and https are allowed, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return valueError("base_url", "base_url %q has no host", rawURL)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return valueError("base_url", "base_url %q must not carry a query or fragment", rawURL)
	}
	return nil
}
