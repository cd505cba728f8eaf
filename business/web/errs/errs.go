// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"github.com/ardanlabs/btcgateway/foundation/validate"
)

// Kind names the class of failure reported to the client.
type Kind string

// Set of error kinds reported in responses.
const (
	Validation          Kind = "validation"
	NotFound            Kind = "not_found"
	UpstreamRejected    Kind = "upstream_rejected"
	UpstreamUnavailable Kind = "upstream_unavailable"
	UpstreamAuth        Kind = "upstream_auth"
	UpstreamTimeout     Kind = "upstream_timeout"
	UpstreamTransport   Kind = "upstream_transport"
	Internal            Kind = "internal"
)

// Detail is the error object inside a Response.
type Detail struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  Detail            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Kind   Kind
	Status int
	Fields map[string]string
}

// NewTrusted wraps a provided error with a kind and HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, kind Kind, status int) error {
	return &Trusted{Err: err, Kind: kind, Status: status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// Response constructs the body sent to the client.
func (te *Trusted) Response() Response {
	return Response{
		Error: Detail{
			Kind:    te.Kind,
			Message: te.Err.Error(),
		},
		Fields: te.Fields,
	}
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// FromError maps any error produced while handling a request onto the kind
// and status the client receives. Errors that aren't recognized are
// reported as internal failures with a generic message.
func FromError(err error) *Trusted {
	if te := GetTrusted(err); te != nil {
		return te
	}

	if fe := validate.GetFieldErrors(err); fe != nil {
		return &Trusted{
			Err:    errors.New("invalid path parameter"),
			Kind:   Validation,
			Status: http.StatusBadRequest,
			Fields: fe.Fields(),
		}
	}

	if ue := upstream.GetError(err); ue != nil {
		kind, status := fromUpstream(ue)
		return &Trusted{Err: errors.New(upstreamMessage(ue)), Kind: kind, Status: status}
	}

	return &Trusted{
		Err:    errors.New(http.StatusText(http.StatusInternalServerError)),
		Kind:   Internal,
		Status: http.StatusInternalServerError,
	}
}

func fromUpstream(ue *upstream.Error) (Kind, int) {
	switch ue.Kind {
	case upstream.KindRejected:
		switch ue.Code {
		case upstream.CodeInvalidAddressOrKey, upstream.CodeInvalidParameter:
			return NotFound, http.StatusNotFound
		case upstream.CodeInWarmup:
			return UpstreamUnavailable, http.StatusServiceUnavailable
		}
		return UpstreamRejected, http.StatusBadGateway

	case upstream.KindAuth:
		return UpstreamAuth, http.StatusBadGateway

	case upstream.KindTimeout:
		return UpstreamTimeout, http.StatusGatewayTimeout
	}

	return UpstreamTransport, http.StatusBadGateway
}

// upstreamMessage keeps transport details such as the node address out of
// client responses.
func upstreamMessage(ue *upstream.Error) string {
	switch ue.Kind {
	case upstream.KindRejected:
		return ue.Message
	case upstream.KindAuth:
		return "node rejected the gateway credentials"
	case upstream.KindTimeout:
		return "node did not answer in time"
	}
	return "node unreachable"
}
