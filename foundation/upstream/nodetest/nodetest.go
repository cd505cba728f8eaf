// Package nodetest provides a fake full node speaking JSON-RPC over HTTP
// for use in tests.
package nodetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Cookie is the credential written to the cookie file for every Node.
const Cookie = "__cookie__:3b5c1a8f0e"

// Call records one request received by the node.
type Call struct {
	Method string
	Params []json.RawMessage
	Auth   string
}

// RPCError is returned by a MethodFunc to produce a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MethodFunc produces the result for a method given its positional params.
type MethodFunc func(params []json.RawMessage) (any, *RPCError)

// Node is a fake full node.
type Node struct {
	Server     *httptest.Server
	CookiePath string

	// Legacy makes the node report method errors the way JSON-RPC 1.0 nodes
	// do, with a 500 status code.
	Legacy bool

	mu      sync.Mutex
	methods map[string]MethodFunc
	calls   []Call
}

// New starts a node and writes a cookie file into a temporary directory.
// Both are cleaned up when the test completes.
func New(t *testing.T, methods map[string]MethodFunc) *Node {
	t.Helper()

	cookiePath := filepath.Join(t.TempDir(), ".cookie")
	if err := os.WriteFile(cookiePath, []byte(Cookie), 0600); err != nil {
		t.Fatalf("Should be able to write the cookie file: %s", err)
	}

	n := Node{
		CookiePath: cookiePath,
		methods:    methods,
	}
	if n.methods == nil {
		n.methods = make(map[string]MethodFunc)
	}

	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Server.Close)

	return &n
}

// URL returns the endpoint of the node.
func (n *Node) URL() string {
	return n.Server.URL
}

// Handle registers the function for the specified method.
func (n *Node) Handle(method string, fn MethodFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.methods[method] = fn
}

// Calls returns a copy of the requests received so far.
func (n *Node) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()

	calls := make([]Call, len(n.calls))
	copy(calls, n.calls)
	return calls
}

// Result returns a MethodFunc that always answers with v.
func Result(v any) MethodFunc {
	return func(params []json.RawMessage) (any, *RPCError) {
		return v, nil
	}
}

// Fail returns a MethodFunc that always answers with the specified error.
func Fail(code int, message string) MethodFunc {
	return func(params []json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: code, Message: message}
	}
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, Call{Method: req.Method, Params: req.Params, Auth: r.Header.Get("Authorization")})
	fn, exists := n.methods[req.Method]
	legacy := n.Legacy
	n.mu.Unlock()

	resp := struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  any             `json:"result"`
		Error   *RPCError       `json:"error,omitempty"`
	}{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	switch {
	case !exists:
		resp.Error = &RPCError{Code: -32601, Message: "Method not found"}

	default:
		resp.Result, resp.Error = fn(req.Params)
	}

	w.Header().Set("Content-Type", "application/json")
	if legacy && resp.Error != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(resp)
}
