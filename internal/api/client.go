package api

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/siftscience/sift-cli/internal/validation"
)

const (
	DefaultBaseURL    = "https://api.sift.com"
	DefaultAPIVersion = "205"
	DefaultTimeout    = 2 * time.Second

	// ClientVersion is reported in the User-Agent header.
	ClientVersion = "1.0.0"
)

// Timeout bounds one call. Connect limits dialing; the whole call must finish
// within Connect+Read. A zero Connect means dialing is only bounded by the
// overall deadline.
type Timeout struct {
	Connect time.Duration
	Read    time.Duration
}

// Seconds returns a single-value timeout of s seconds.
func Seconds(s float64) Timeout {
	return Timeout{Read: time.Duration(s * float64(time.Second))}
}

// Total returns the overall deadline for a call.
func (t Timeout) Total() time.Duration {
	return t.Connect + t.Read
}

// IsZero reports whether no timeout was set.
func (t Timeout) IsZero() bool {
	return t.Connect == 0 && t.Read == 0
}

// Config holds the values a Client is built from. Zero fields take the
// package defaults; APIKey and AccountID fall back to SetDefaultCredentials.
type Config struct {
	APIKey     string
	AccountID  string
	BaseURL    string
	Version    string
	Timeout    Timeout
	HTTPClient *http.Client
	UserAgent  string
}

var (
	defaultsMu       sync.RWMutex
	defaultAPIKey    string
	defaultAccountID string
)

// SetDefaultCredentials sets the process-wide API key and account id used by
// New when a Config leaves them empty. Clients already built are unaffected.
func SetDefaultCredentials(apiKey, accountID string) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultAPIKey = apiKey
	defaultAccountID = accountID
}

func defaultCredentials() (string, string) {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultAPIKey, defaultAccountID
}

// Client is the Sift API client. It is safe for concurrent use; the only
// state shared between calls is the HTTP connection pool and the last seen
// rate limit headers.
type Client struct {
	apiKey    string
	accountID string
	baseURL   string
	version   string
	timeout   Timeout
	userAgent string
	http      *http.Client
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

// New validates cfg and creates a client. No network activity happens here.
func New(cfg Config) (*Client, error) {
	fallbackKey, fallbackAccount := defaultCredentials()
	if cfg.APIKey == "" {
		cfg.APIKey = fallbackKey
	}
	if cfg.AccountID == "" {
		cfg.AccountID = fallbackAccount
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultAPIVersion
	}
	if cfg.Timeout.IsZero() {
		cfg.Timeout = Timeout{Read: DefaultTimeout}
	}

	if err := validation.NonEmptyString("api_key", cfg.APIKey); err != nil {
		return nil, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: newTransport()}
	}

	return &Client{
		apiKey:    cfg.APIKey,
		accountID: cfg.AccountID,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		version:   cfg.Version,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		http:      httpClient,
	}, nil
}

// AccountID returns the account id used by account-scoped operations.
func (c *Client) AccountID() string { return c.accountID }

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Version returns the default API version.
func (c *Client) Version() string { return c.version }

// DefaultTimeout returns the timeout applied when a call sets none.
func (c *Client) DefaultTimeout() Timeout { return c.timeout }

type connectTimeoutKey struct{}

func withConnectTimeout(ctx context.Context, d time.Duration) context.Context {
	if d <= 0 {
		return ctx
	}
	return context.WithValue(ctx, connectTimeoutKey{}, d)
}

func newTransport() *http.Transport {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if d, ok := ctx.Value(connectTimeoutKey{}).(time.Duration); ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return dialer.DialContext(ctx, network, addr)
	}
	return transport
}
