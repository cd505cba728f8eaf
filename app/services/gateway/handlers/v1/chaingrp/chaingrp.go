// Package chaingrp maintains the group of handlers for blockchain access.
package chaingrp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/ardanlabs/btcgateway/foundation/events"
	"github.com/ardanlabs/btcgateway/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// pingPeriod is how often an idle websocket is pinged.
const pingPeriod = 30 * time.Second

// Handlers manages the set of blockchain endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *chain.Core
	WS   websocket.Upgrader
	Evts *events.Events
}

// BestBlock returns the hash of the best block.
func (h Handlers) BestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := h.Core.BestBlockHash(ctx)
	if err != nil {
		return fmt.Errorf("best block: %w", err)
	}

	return web.Respond(ctx, w, hash, http.StatusOK)
}

// Block returns the block for the specified hash.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := chain.ParseDigest("hash", web.Param(r, "hash"))
	if err != nil {
		return err
	}

	block, err := h.Core.Block(ctx, hash)
	if err != nil {
		return fmt.Errorf("block[%s]: %w", hash, err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Info returns the node's view of the chain state.
func (h Handlers) Info(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info, err := h.Core.BlockchainInfo(ctx)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// BlockCount returns the current chain height.
func (h Handlers) BlockCount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := h.Core.BlockCount(ctx)
	if err != nil {
		return fmt.Errorf("block count: %w", err)
	}

	return web.Respond(ctx, w, count, http.StatusOK)
}

// BlockFilter returns the compact block filter for the specified hash.
func (h Handlers) BlockFilter(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := chain.ParseDigest("hash", web.Param(r, "hash"))
	if err != nil {
		return err
	}

	filter, err := h.Core.BlockFilter(ctx, hash)
	if err != nil {
		return fmt.Errorf("block filter[%s]: %w", hash, err)
	}

	return web.Respond(ctx, w, filter, http.StatusOK)
}

// BlockHash returns the hash of the block at the specified height.
func (h Handlers) BlockHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := chain.ParseIndex("height", web.Param(r, "height"))
	if err != nil {
		return err
	}

	hash, err := h.Core.BlockHash(ctx, height)
	if err != nil {
		return fmt.Errorf("block hash[%d]: %w", height, err)
	}

	return web.Respond(ctx, w, hash, http.StatusOK)
}

// BlockHeader returns the header for the specified hash.
func (h Handlers) BlockHeader(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := chain.ParseDigest("hash", web.Param(r, "hash"))
	if err != nil {
		return err
	}

	header, err := h.Core.BlockHeader(ctx, hash)
	if err != nil {
		return fmt.Errorf("block header[%s]: %w", hash, err)
	}

	return web.Respond(ctx, w, header, http.StatusOK)
}

// ChainTips returns every known tip in the block tree.
func (h Handlers) ChainTips(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tips, err := h.Core.ChainTips(ctx)
	if err != nil {
		return fmt.Errorf("chain tips: %w", err)
	}

	return web.Respond(ctx, w, tips, http.StatusOK)
}

// Difficulty returns the current proof-of-work difficulty.
func (h Handlers) Difficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	difficulty, err := h.Core.Difficulty(ctx)
	if err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}

	return web.Respond(ctx, w, difficulty, http.StatusOK)
}

// TxOut returns an unspent output looking only at confirmed state as far as
// the request is concerned: the mempool flag is not sent to the node.
func (h Handlers) TxOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txid, vout, err := chain.ParseOutpoint(web.Param(r, "txid"), web.Param(r, "vout"))
	if err != nil {
		return err
	}

	out, err := h.Core.TxOut(ctx, txid, vout, false)
	if err != nil {
		return fmt.Errorf("txout[%s:%d]: %w", txid, vout, err)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// TipEvents upgrades the connection to a websocket and sends the best block
// hash every time it changes.
func (h Handlers) TipEvents(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// Upgrade has already replied to the client when it fails.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infow("tip events", "traceid", v.TraceID, "status", "upgrade failed", "ERROR", err)
		return nil
	}
	defer c.Close()

	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Send the current tip right away so the client has a starting point.
	if hash, err := h.Core.BestBlockHash(ctx); err == nil {
		if err := c.WriteMessage(websocket.TextMessage, hash); err != nil {
			return nil
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
