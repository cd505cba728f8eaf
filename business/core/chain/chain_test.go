package chain_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"go.uber.org/zap"
)

type call struct {
	method string
	args   []any
}

type fakeNode struct {
	mu      sync.Mutex
	calls   []call
	results map[string]json.RawMessage
	err     error
}

func (n *fakeNode) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls = append(n.calls, call{method: method, args: args})
	if n.err != nil {
		return nil, n.err
	}
	return n.results[method], nil
}

func (n *fakeNode) Calls() []call {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]call(nil), n.calls...)
}

func Test_Operations(t *testing.T) {
	txid, err := chain.ParseDigest("txid", genesis)
	if err != nil {
		t.Fatalf("Should be able to parse the digest: %s", err)
	}

	type table struct {
		name   string
		op     func(ctx context.Context, core *chain.Core) (json.RawMessage, error)
		method string
		args   []any
	}

	tt := []table{
		{name: "bestblock", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BestBlockHash(ctx) }, method: "getbestblockhash"},
		{name: "block", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.Block(ctx, txid) }, method: "getblock", args: []any{genesis}},
		{name: "info", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BlockchainInfo(ctx) }, method: "getblockchaininfo"},
		{name: "blockcount", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BlockCount(ctx) }, method: "getblockcount"},
		{name: "blockfilter", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BlockFilter(ctx, txid) }, method: "getblockfilter", args: []any{genesis}},
		{name: "blockhash", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BlockHash(ctx, 0) }, method: "getblockhash", args: []any{chain.Index(0)}},
		{name: "blockheader", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.BlockHeader(ctx, txid) }, method: "getblockheader", args: []any{genesis}},
		{name: "chaintips", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.ChainTips(ctx) }, method: "getchaintips"},
		{name: "difficulty", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.Difficulty(ctx) }, method: "getdifficulty"},
		{name: "txout", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.TxOut(ctx, txid, 1, false) }, method: "gettxout", args: []any{genesis, chain.Index(1)}},
		{name: "mempooltxout", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.TxOut(ctx, txid, 1, true) }, method: "gettxout", args: []any{genesis, chain.Index(1), true}},
		{name: "rawmempool", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.RawMempool(ctx) }, method: "getrawmempool"},
		{name: "mempoolentry", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.MempoolEntry(ctx, txid) }, method: "getmempoolentry", args: []any{genesis}},
		{name: "txoutsetinfo", op: func(ctx context.Context, c *chain.Core) (json.RawMessage, error) { return c.TxOutSetInfo(ctx) }, method: "gettxoutsetinfo"},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			exp := json.RawMessage(`{"from":"` + tst.method + `"}`)
			node := fakeNode{results: map[string]json.RawMessage{tst.method: exp}}
			core := chain.NewCore(zap.NewNop().Sugar(), &node)

			got, err := tst.op(context.Background(), core)
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to execute the operation: %s", tst.name, err)
			}

			if string(got) != string(exp) {
				t.Logf("Test %s:\tgot: %s", tst.name, got)
				t.Logf("Test %s:\texp: %s", tst.name, exp)
				t.Fatalf("Test %s:\tShould get back the node result unmodified.", tst.name)
			}

			calls := node.Calls()
			if len(calls) != 1 {
				t.Fatalf("Test %s:\tShould issue exactly one call, got %d", tst.name, len(calls))
			}

			if calls[0].method != tst.method {
				t.Logf("Test %s:\tgot: %s", tst.name, calls[0].method)
				t.Logf("Test %s:\texp: %s", tst.name, tst.method)
				t.Fatalf("Test %s:\tShould call the right method.", tst.name)
			}

			if len(calls[0].args) != len(tst.args) || (len(tst.args) > 0 && !reflect.DeepEqual(calls[0].args, tst.args)) {
				t.Logf("Test %s:\tgot: %#v", tst.name, calls[0].args)
				t.Logf("Test %s:\texp: %#v", tst.name, tst.args)
				t.Fatalf("Test %s:\tShould pass the right arguments.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_OperationError(t *testing.T) {
	ue := upstream.Error{Kind: upstream.KindRejected, Method: "getblock", Code: upstream.CodeInvalidAddressOrKey, Message: "Block not found"}
	node := fakeNode{err: &ue}
	core := chain.NewCore(zap.NewNop().Sugar(), &node)

	d, _ := chain.ParseDigest("hash", genesis)
	if _, err := core.Block(context.Background(), d); !errors.Is(err, &ue) {
		t.Logf("got: %v", err)
		t.Fatalf("Should get back the node error.")
	}
}

type publisher struct {
	count int
	msgs  chan string
}

func (p *publisher) Count() int      { return p.count }
func (p *publisher) Send(msg string) { p.msgs <- msg }

func Test_WatchTip(t *testing.T) {
	node := fakeNode{results: map[string]json.RawMessage{"getbestblockhash": json.RawMessage(`"` + genesis + `"`)}}
	core := chain.NewCore(zap.NewNop().Sugar(), &node)

	pub := publisher{count: 1, msgs: make(chan string, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		core.WatchTip(ctx, &pub, 5*time.Millisecond)
		close(done)
	}()

	select {
	case msg := <-pub.msgs:
		if msg != `"`+genesis+`"` {
			t.Logf("got: %s", msg)
			t.Fatalf("Should publish the best block hash.")
		}
	case <-time.After(time.Second):
		t.Fatalf("Should publish the tip within a second.")
	}

	// Let the watcher poll a few more times without a tip change.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if len(pub.msgs) != 0 {
		t.Fatalf("Should only publish when the tip changes, got %d extra", len(pub.msgs))
	}
}
