// Package upstream maintains the single authenticated JSON-RPC connection to
// the full node. One Client is constructed at startup and shared by every
// request handler for the life of the process.
package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// Config represents the settings required to reach the node.
type Config struct {
	URL        string
	CookiePath string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the shared handle to the node. The underlying go-ethereum client
// multiplexes concurrent calls, so a Client can be used by any number of
// goroutines without further locking.
type Client struct {
	rpc     *rpc.Client
	host    string
	timeout time.Duration
}

// New reads the cookie file and constructs the client. Any failure is
// returned as a *SetupError and the service must not start.
func New(ctx context.Context, cfg Config) (*Client, error) {
	u, err := parseURL(cfg.URL)
	if err != nil {
		return nil, &SetupError{Err: err}
	}

	auth, err := ReadCookie(cfg.CookiePath)
	if err != nil {
		return nil, &SetupError{Err: err}
	}

	opts := []rpc.ClientOption{
		rpc.WithHTTPAuth(auth.header),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, rpc.WithHTTPClient(cfg.HTTPClient))
	}

	rpcClient, err := rpc.DialOptions(ctx, u.String(), opts...)
	if err != nil {
		return nil, &SetupError{Err: fmt.Errorf("dial %s: %w", u.Host, err)}
	}

	c := Client{
		rpc:     rpcClient,
		host:    u.Host,
		timeout: cfg.Timeout,
	}

	return &c, nil
}

// Close releases the resources held by the client.
func (c *Client) Close() {
	c.rpc.Close()
}

// Host returns the host:port of the node this client talks to.
func (c *Client) Host() string {
	return c.host
}

// Call executes the named RPC method with the positional arguments provided
// and returns the result document exactly as the node produced it. Arguments
// that are not provided are omitted from the request so the node applies its
// own defaults.
func (c *Client) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var result json.RawMessage
	if err := c.rpc.CallContext(ctx, &result, method, args...); err != nil {
		return nil, classify(method, err)
	}

	return result, nil
}

// =============================================================================

// classify converts a go-ethereum client error into an *Error.
func classify(method string, err error) error {
	var httpErr rpc.HTTPError
	var rpcErr rpc.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Method: method, Message: "node did not answer in time", Err: err}

	case errors.As(err, &httpErr):
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return &Error{Kind: KindAuth, Method: method, Message: "node rejected the cookie credentials", Err: err}
		}

		// Nodes speaking JSON-RPC 1.0 report method errors with a non 2xx
		// status and the error object in the body.
		if code, msg, ok := decodeLegacyError(httpErr.Body); ok {
			return &Error{Kind: KindRejected, Method: method, Code: code, Message: msg, Err: err}
		}

		return &Error{Kind: KindTransport, Method: method, Message: httpErr.Status, Err: err}

	case errors.As(err, &rpcErr):
		return &Error{Kind: KindRejected, Method: method, Code: rpcErr.ErrorCode(), Message: rpcErr.Error(), Err: err}
	}

	return &Error{Kind: KindTransport, Method: method, Message: err.Error(), Err: err}
}

// decodeLegacyError extracts the error object from a JSON-RPC 1.0 response.
func decodeLegacyError(body []byte) (int, string, bool) {
	var resp struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&resp); err != nil {
		return 0, "", false
	}
	if resp.Error == nil {
		return 0, "", false
	}

	return resp.Error.Code, resp.Error.Message, true
}

// parseURL validates the node endpoint.
func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing node url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("node url %q: scheme must be http or https", rawURL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("node url %q: missing host", rawURL)
	}

	return u, nil
}

// =============================================================================

// Cookie represents the credentials the node writes to its .cookie file.
type Cookie struct {
	User     string
	Password string
}

// ReadCookie loads and validates the cookie file at the specified path.
// The file holds a single "user:password" line.
func ReadCookie(path string) (Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Cookie{}, fmt.Errorf("reading cookie file: %w", err)
	}

	line := string(bytes.TrimSpace(data))
	user, pass, found := strings.Cut(line, ":")
	if !found || user == "" || pass == "" {
		return Cookie{}, fmt.Errorf("cookie file %q: expected user:password", path)
	}

	return Cookie{User: user, Password: pass}, nil
}

// header sets the basic authorization header for every request.
func (ck Cookie) header(h http.Header) error {
	creds := base64.StdEncoding.EncodeToString([]byte(ck.User + ":" + ck.Password))
	h.Set("Authorization", "Basic "+creds)
	return nil
}
