package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/btcgateway/business/sys/metrics"
	"github.com/ardanlabs/btcgateway/foundation/web"
)

// Metrics updates program counters. The route label is the declared path
// template, never the raw path, so identifiers don't explode the series.
func Metrics(route string) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			metrics.AddRequests(route)

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
