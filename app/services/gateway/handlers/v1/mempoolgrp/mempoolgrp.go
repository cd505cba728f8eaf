// Package mempoolgrp maintains the group of handlers for mempool access.
package mempoolgrp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/ardanlabs/btcgateway/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of mempool endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *chain.Core
}

// TxOut returns an unspent output with the node told explicitly to take the
// mempool into account.
func (h Handlers) TxOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txid, vout, err := chain.ParseOutpoint(web.Param(r, "txid"), web.Param(r, "vout"))
	if err != nil {
		return err
	}

	out, err := h.Core.TxOut(ctx, txid, vout, true)
	if err != nil {
		return fmt.Errorf("mempool txout[%s:%d]: %w", txid, vout, err)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// Raw returns the txids of every transaction in the mempool.
func (h Handlers) Raw(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txids, err := h.Core.RawMempool(ctx)
	if err != nil {
		return fmt.Errorf("raw mempool: %w", err)
	}

	return web.Respond(ctx, w, txids, http.StatusOK)
}

// Entry returns the mempool data for the specified transaction.
func (h Handlers) Entry(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txid, err := chain.ParseDigest("txid", web.Param(r, "txid"))
	if err != nil {
		return err
	}

	entry, err := h.Core.MempoolEntry(ctx, txid)
	if err != nil {
		return fmt.Errorf("mempool entry[%s]: %w", txid, err)
	}

	return web.Respond(ctx, w, entry, http.StatusOK)
}

// TxOutSetInfo returns statistics about the unspent output set.
func (h Handlers) TxOutSetInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info, err := h.Core.TxOutSetInfo(ctx)
	if err != nil {
		return fmt.Errorf("txout set info: %w", err)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}
