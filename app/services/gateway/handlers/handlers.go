// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/btcgateway/app/services/gateway/handlers/debug/checkgrp"
	v1 "github.com/ardanlabs/btcgateway/app/services/gateway/handlers/v1"
	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/ardanlabs/btcgateway/business/web/errs"
	"github.com/ardanlabs/btcgateway/business/web/mid"
	"github.com/ardanlabs/btcgateway/foundation/events"
	"github.com/ardanlabs/btcgateway/foundation/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown   chan os.Signal
	Log        *zap.SugaredLogger
	Core       *chain.Core
	Evts       *events.Events
	Group      string
	CorsOrigin string
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Panics(),
	)

	// Unknown paths get the same error body as every other failure.
	app.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
		resp := errs.Response{
			Error: errs.Detail{
				Kind:    errs.NotFound,
				Message: "no route for " + r.URL.Path,
			},
		}
		web.Respond(context.Background(), w, resp, http.StatusNotFound)
	}

	// Load the v1 routes.
	v1.PublicRoutes(app, v1.Config{
		Log:        cfg.Log,
		Core:       cfg.Core,
		Evts:       cfg.Evts,
		Group:      cfg.Group,
		CorsOrigin: cfg.CorsOrigin,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	// Register the prometheus collectors.
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. This bypassing the use of the
// DefaultServerMux. Using the DefaultServerMux would be a security risk since
// a dependency could inject a handler into our service without us knowing it.
func DebugMux(build string, log *zap.SugaredLogger, core *chain.Core) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		Core:  core,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
