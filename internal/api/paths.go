package api

import (
	"strings"

	"github.com/siftscience/sift-cli/internal/validation"
)

const upperhex = "0123456789ABCDEF"

// escapePath percent-encodes s for use as one path segment. Only unreserved
// characters (RFC 3986 section 2.3) are left as-is, so "/" never survives.
func escapePath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// versionedPath returns {base}/v{version}{resource}. An empty version uses
// the client default.
func (c *Client) versionedPath(version, resource string) string {
	if version == "" {
		version = c.version
	}
	if resource != "" && resource[0] != '/' {
		resource = "/" + resource
	}
	return c.baseURL + "/v" + version + resource
}

// v1Path returns an endpoint under the fixed /v1 tree.
func (c *Client) v1Path(resource string) string {
	return c.versionedPath("1", resource)
}

// accountPath returns {base}/v3/accounts/{account_id}{resource}. It fails
// when the client has no account id.
func (c *Client) accountPath(resource string) (string, error) {
	if err := validation.NonEmptyID("account_id", c.accountID); err != nil {
		return "", err
	}
	if resource != "" && resource[0] != '/' {
		resource = "/" + resource
	}
	return c.baseURL + "/v3/accounts/" + escapePath(c.accountID) + resource, nil
}
