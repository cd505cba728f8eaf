package upstream_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"github.com/ardanlabs/btcgateway/foundation/upstream/nodetest"
)

func Test_New(t *testing.T) {
	node := nodetest.New(t, nil)

	badCookie := filepath.Join(t.TempDir(), "bad.cookie")
	if err := os.WriteFile(badCookie, []byte("no-separator"), 0600); err != nil {
		t.Fatalf("Should be able to write the cookie file: %s", err)
	}

	type table struct {
		name   string
		url    string
		cookie string
	}

	tt := []table{
		{name: "scheme", url: "localhost:8332", cookie: node.CookiePath},
		{name: "nohost", url: "http://", cookie: node.CookiePath},
		{name: "parse", url: "http://[::1", cookie: node.CookiePath},
		{name: "missing", url: node.URL(), cookie: filepath.Join(t.TempDir(), "nope")},
		{name: "malformed", url: node.URL(), cookie: badCookie},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			_, err := upstream.New(context.Background(), upstream.Config{URL: tst.url, CookiePath: tst.cookie})
			if err == nil {
				t.Fatalf("Test %s:\tShould fail to construct the client.", tst.name)
			}

			if !upstream.IsSetupError(err) {
				t.Logf("Test %s:\tgot: %T", tst.name, err)
				t.Fatalf("Test %s:\tShould get back a setup error.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Call(t *testing.T) {
	const hash = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

	node := nodetest.New(t, map[string]nodetest.MethodFunc{
		"getblockhash": nodetest.Result(hash),
		"gettxout":     nodetest.Result(nil),
	})

	client, err := upstream.New(context.Background(), upstream.Config{URL: node.URL(), CookiePath: node.CookiePath, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Should be able to construct the client: %s", err)
	}
	defer client.Close()

	result, err := client.Call(context.Background(), "getblockhash", 0)
	if err != nil {
		t.Fatalf("Should be able to call getblockhash: %s", err)
	}

	if exp := `"` + hash + `"`; string(result) != exp {
		t.Logf("got: %s", result)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the node result unmodified.")
	}

	result, err = client.Call(context.Background(), "gettxout", hash, 1)
	if err != nil {
		t.Fatalf("Should be able to call gettxout: %s", err)
	}

	if string(result) != "null" {
		t.Logf("got: %s", result)
		t.Fatalf("Should get back a null result for a spent output.")
	}

	calls := node.Calls()
	if len(calls) != 2 {
		t.Fatalf("Should have issued 2 calls, got %d", len(calls))
	}

	exp := "Basic " + base64.StdEncoding.EncodeToString([]byte(nodetest.Cookie))
	if calls[0].Auth != exp {
		t.Logf("got: %s", calls[0].Auth)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should authenticate with the cookie credentials.")
	}

	var height int
	if err := json.Unmarshal(calls[0].Params[0], &height); err != nil || height != 0 {
		t.Fatalf("Should send the height as the first param, got %s", calls[0].Params[0])
	}

	if len(calls[1].Params) != 2 {
		t.Fatalf("Should only send the params provided, got %d", len(calls[1].Params))
	}
}

func Test_CallErrors(t *testing.T) {
	node := nodetest.New(t, map[string]nodetest.MethodFunc{
		"getblock": nodetest.Fail(upstream.CodeInvalidAddressOrKey, "Block not found"),
		"getblockcount": func(params []json.RawMessage) (any, *nodetest.RPCError) {
			time.Sleep(200 * time.Millisecond)
			return 1, nil
		},
	})

	legacy := nodetest.New(t, map[string]nodetest.MethodFunc{
		"getblockhash": nodetest.Fail(upstream.CodeInvalidParameter, "Block height out of range"),
	})
	legacy.Legacy = true

	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer unauthorized.Close()

	type table struct {
		name   string
		url    string
		method string
		kind   upstream.Kind
		code   int
	}

	tt := []table{
		{name: "rejected", url: node.URL(), method: "getblock", kind: upstream.KindRejected, code: upstream.CodeInvalidAddressOrKey},
		{name: "legacy", url: legacy.URL(), method: "getblockhash", kind: upstream.KindRejected, code: upstream.CodeInvalidParameter},
		{name: "timeout", url: node.URL(), method: "getblockcount", kind: upstream.KindTimeout},
		{name: "auth", url: unauthorized.URL, method: "getblockcount", kind: upstream.KindAuth},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			client, err := upstream.New(context.Background(), upstream.Config{URL: tst.url, CookiePath: node.CookiePath, Timeout: 50 * time.Millisecond})
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to construct the client: %s", tst.name, err)
			}
			defer client.Close()

			_, err = client.Call(context.Background(), tst.method)
			if err == nil {
				t.Fatalf("Test %s:\tShould get back an error.", tst.name)
			}

			ue := upstream.GetError(err)
			if ue == nil {
				t.Logf("Test %s:\tgot: %T", tst.name, err)
				t.Fatalf("Test %s:\tShould get back an upstream error.", tst.name)
			}

			if ue.Kind != tst.kind {
				t.Logf("Test %s:\tgot: %s", tst.name, ue.Kind)
				t.Logf("Test %s:\texp: %s", tst.name, tst.kind)
				t.Fatalf("Test %s:\tShould get back the right kind.", tst.name)
			}

			if ue.Code != tst.code {
				t.Logf("Test %s:\tgot: %d", tst.name, ue.Code)
				t.Logf("Test %s:\texp: %d", tst.name, tst.code)
				t.Fatalf("Test %s:\tShould get back the right code.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
