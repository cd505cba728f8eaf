package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/btcgateway/business/sys/metrics"
	"github.com/ardanlabs/btcgateway/business/web/errs"
	"github.com/ardanlabs/btcgateway/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(log *zap.SugaredLogger) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// If the context is missing this value, request the service
			// to be shutdown gracefully.
			v, err := web.GetValues(ctx)
			if err != nil {
				return web.NewShutdownError("web value missing from context")
			}

			// Run the next handler and catch any propagated error.
			if err := handler(ctx, w, r); err != nil {

				// A shutdown error needs to be returned to the base handler
				// to shut down the service.
				if web.IsShutdown(err) {
					return err
				}

				te := errs.FromError(err)

				// Log the original error, the client only sees the mapped one.
				log.Errorw("ERROR", "traceid", v.TraceID, "kind", te.Kind, "status", te.Status, "ERROR", err)
				metrics.AddErrors(string(te.Kind))

				// Respond with the error back to the client.
				if err := web.Respond(ctx, w, te.Response(), te.Status); err != nil {
					return err
				}
			}

			// The error has been handled so we can stop propagating it.
			return nil
		}

		return h
	}

	return m
}
