package web

import (
	"context"
	"encoding/json"
	"net/http"
)

// Respond converts a Go value to JSON and sends it to the client. A
// json.RawMessage is written as is, so documents produced elsewhere
// reach the client byte for byte.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {

	// Set the status code for the request logger middleware. Responses
	// written outside of a route, like the not found handler, don't carry
	// request values.
	SetStatusCode(ctx, statusCode)

	// If there is nothing to marshal then set status code and return.
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	var jsonData []byte
	switch d := data.(type) {
	case json.RawMessage:
		jsonData = d
		if len(jsonData) == 0 {
			jsonData = []byte("null")
		}

	default:
		var err error
		if jsonData, err = json.Marshal(data); err != nil {
			return err
		}
	}

	// Set the content type and headers once we know marshaling has succeeded.
	w.Header().Set("Content-Type", "application/json")

	// Write the status code to the response.
	w.WriteHeader(statusCode)

	// Send the result back to the client.
	if _, err := w.Write(jsonData); err != nil {
		return err
	}

	return nil
}
