// Package chain provides the read operations the gateway exposes for the
// full node. Every operation issues exactly one JSON-RPC call and returns the
// node's result document unmodified.
package chain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ardanlabs/btcgateway/business/sys/metrics"
	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"go.uber.org/zap"
)

// Set of RPC methods used by the gateway.
const (
	MethodBestBlockHash  = "getbestblockhash"
	MethodBlock          = "getblock"
	MethodBlockchainInfo = "getblockchaininfo"
	MethodBlockCount     = "getblockcount"
	MethodBlockFilter    = "getblockfilter"
	MethodBlockHash      = "getblockhash"
	MethodBlockHeader    = "getblockheader"
	MethodChainTips      = "getchaintips"
	MethodDifficulty     = "getdifficulty"
	MethodTxOut          = "gettxout"
	MethodRawMempool     = "getrawmempool"
	MethodMempoolEntry   = "getmempoolentry"
	MethodTxOutSetInfo   = "gettxoutsetinfo"
)

// Caller executes one JSON-RPC call against the node.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (json.RawMessage, error)
}

// Core manages the set of APIs for chain access.
type Core struct {
	log  *zap.SugaredLogger
	node Caller
}

// NewCore constructs a core for chain api access.
func NewCore(log *zap.SugaredLogger, node Caller) *Core {
	return &Core{
		log:  log,
		node: node,
	}
}

// BestBlockHash returns the hash of the tip of the most-work chain.
func (c *Core) BestBlockHash(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodBestBlockHash)
}

// Block returns the block for the specified hash.
func (c *Core) Block(ctx context.Context, hash Digest) (json.RawMessage, error) {
	return c.call(ctx, MethodBlock, hash.String())
}

// BlockchainInfo returns the node's view of the chain state.
func (c *Core) BlockchainInfo(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodBlockchainInfo)
}

// BlockCount returns the height of the most-work chain.
func (c *Core) BlockCount(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodBlockCount)
}

// BlockFilter returns the compact block filter for the specified hash.
func (c *Core) BlockFilter(ctx context.Context, hash Digest) (json.RawMessage, error) {
	return c.call(ctx, MethodBlockFilter, hash.String())
}

// BlockHash returns the hash of the block at the specified height.
func (c *Core) BlockHash(ctx context.Context, height Index) (json.RawMessage, error) {
	return c.call(ctx, MethodBlockHash, height)
}

// BlockHeader returns the header for the specified hash.
func (c *Core) BlockHeader(ctx context.Context, hash Digest) (json.RawMessage, error) {
	return c.call(ctx, MethodBlockHeader, hash.String())
}

// ChainTips returns every known tip in the block tree.
func (c *Core) ChainTips(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodChainTips)
}

// Difficulty returns the proof-of-work difficulty.
func (c *Core) Difficulty(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodDifficulty)
}

// TxOut returns the unspent output for the txid and index. When
// includeMempool is false the mempool flag is left out of the call and
// the node applies its default, otherwise it is passed explicitly as true.
// A spent or unknown output produces a null document.
func (c *Core) TxOut(ctx context.Context, txid Digest, vout Index, includeMempool bool) (json.RawMessage, error) {
	if includeMempool {
		return c.call(ctx, MethodTxOut, txid.String(), vout, true)
	}
	return c.call(ctx, MethodTxOut, txid.String(), vout)
}

// RawMempool returns the txids of every transaction in the mempool.
func (c *Core) RawMempool(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodRawMempool)
}

// MempoolEntry returns the mempool data for the specified txid.
func (c *Core) MempoolEntry(ctx context.Context, txid Digest) (json.RawMessage, error) {
	return c.call(ctx, MethodMempoolEntry, txid.String())
}

// TxOutSetInfo returns statistics about the unspent output set. The node
// may take a long time to compute this.
func (c *Core) TxOutSetInfo(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, MethodTxOutSetInfo)
}

// =============================================================================

func (c *Core) call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	start := time.Now()

	result, err := c.node.Call(ctx, method, args...)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if ue := upstream.GetError(err); ue != nil {
			outcome = string(ue.Kind)
		}
	}
	metrics.ObserveUpstream(method, outcome, time.Since(start))

	return result, err
}
