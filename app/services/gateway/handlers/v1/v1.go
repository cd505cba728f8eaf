// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"context"
	"net/http"

	"github.com/ardanlabs/btcgateway/app/services/gateway/handlers/v1/chaingrp"
	"github.com/ardanlabs/btcgateway/app/services/gateway/handlers/v1/mempoolgrp"
	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/ardanlabs/btcgateway/business/web/mid"
	"github.com/ardanlabs/btcgateway/foundation/events"
	"github.com/ardanlabs/btcgateway/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *zap.SugaredLogger
	Core       *chain.Core
	Evts       *events.Events
	Group      string
	CorsOrigin string
}

// Route binds a path template to the handler that translates it.
type Route struct {
	Path    string
	Handler web.Handler
}

// Routes returns the fixed table of GET routes the gateway serves.
func Routes(cfg Config) []Route {
	cgh := chaingrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
		Evts: cfg.Evts,
	}

	mgh := mempoolgrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
	}

	return []Route{
		{Path: "/blockchain/bestblock", Handler: cgh.BestBlock},
		{Path: "/blockchain/bestblock/events", Handler: cgh.TipEvents},
		{Path: "/blockchain/block/:hash", Handler: cgh.Block},
		{Path: "/blockchain/info", Handler: cgh.Info},
		{Path: "/blockchain/blockcount", Handler: cgh.BlockCount},
		{Path: "/blockchain/blockfilter/:hash", Handler: cgh.BlockFilter},
		{Path: "/blockchain/blockhash/:height", Handler: cgh.BlockHash},
		{Path: "/blockchain/blockheader/:hash", Handler: cgh.BlockHeader},
		{Path: "/blockchain/chaintips", Handler: cgh.ChainTips},
		{Path: "/blockchain/difficulty", Handler: cgh.Difficulty},
		{Path: "/blockchain/txout/:txid/:vout/", Handler: cgh.TxOut},
		{Path: "/mempool/txout/:txid/:vout/", Handler: mgh.TxOut},
		{Path: "/mempool/raw", Handler: mgh.Raw},
		{Path: "/mempool/entry/:txid", Handler: mgh.Entry},
		{Path: "/mempool/txoutsetinfo", Handler: mgh.TxOutSetInfo},
	}
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {

	// Accept CORS 'OPTIONS' preflight requests. These are bound per route
	// so unknown paths still answer 404.
	preflight := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}

	for _, rt := range Routes(cfg) {
		app.Handle(http.MethodGet, cfg.Group, rt.Path, rt.Handler, mid.Cors(cfg.CorsOrigin), mid.Metrics(rt.Path))
		app.Handle(http.MethodOptions, cfg.Group, rt.Path, preflight, mid.Cors(cfg.CorsOrigin))
	}
}
